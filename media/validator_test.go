package media

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationKind(t *testing.T, err error, kind ValidationKind) {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr), "expected *ValidationError, got %T: %v", err, err)
	assert.Equal(t, kind, valErr.Kind)
}

func TestValidateAcceptsWellFormedImages(t *testing.T) {
	v := NewValidator(ValidatorConfig{})

	assert.NoError(t, v.Validate(ImageSource{Data: newTestJPEG(100, 80), Filename: "latte.jpg", ContentType: "image/jpeg"}))
	assert.NoError(t, v.Validate(ImageSource{Data: newTestPNG(60, 60, false), Filename: "muffin.png"}))
	assert.NoError(t, v.Validate(ImageSource{Data: newTestPNG(60, 60, true), Filename: "scone.PNG"}))
}

func TestValidateSizeCeilingIsInclusive(t *testing.T) {
	data := newTestJPEG(50, 50)

	atLimit := NewValidator(ValidatorConfig{MaxUploadSize: int64(len(data))})
	assert.NoError(t, atLimit.Validate(ImageSource{Data: data, Filename: "a.jpg"}))

	oneUnder := NewValidator(ValidatorConfig{MaxUploadSize: int64(len(data)) - 1})
	requireValidationKind(t, oneUnder.Validate(ImageSource{Data: data, Filename: "a.jpg"}), ValidationTooLarge)
}

func TestValidateRejectsDisallowedExtension(t *testing.T) {
	v := NewValidator(ValidatorConfig{})
	data := newTestJPEG(50, 50)

	requireValidationKind(t, v.Validate(ImageSource{Data: data, Filename: "photo.gif"}), ValidationDisallowedExtension)
	requireValidationKind(t, v.Validate(ImageSource{Data: data, Filename: "noextension"}), ValidationDisallowedExtension)

	custom := NewValidator(ValidatorConfig{AllowedExtensions: []string{"png"}})
	requireValidationKind(t, custom.Validate(ImageSource{Data: data, Filename: "photo.jpg"}), ValidationDisallowedExtension)
}

func TestValidateMimeAllowListOnlyAppliesWhenConfigured(t *testing.T) {
	data := newTestJPEG(50, 50)

	unrestricted := NewValidator(ValidatorConfig{})
	assert.NoError(t, unrestricted.Validate(ImageSource{Data: data, Filename: "a.jpg", ContentType: "application/octet-stream"}))

	restricted := NewValidator(ValidatorConfig{AllowedMIMETypes: []string{"image/jpeg", "image/png"}})
	assert.NoError(t, restricted.Validate(ImageSource{Data: data, Filename: "a.jpg", ContentType: "image/jpeg"}))
	assert.NoError(t, restricted.Validate(ImageSource{Data: data, Filename: "a.jpg", ContentType: "image/jpeg; charset=binary"}))
	requireValidationKind(t,
		restricted.Validate(ImageSource{Data: data, Filename: "a.jpg", ContentType: "image/gif"}),
		ValidationDisallowedMimeType)

	// a missing declared type passes through; the extension and decode
	// checks still gate the upload
	assert.NoError(t, restricted.Validate(ImageSource{Data: data, Filename: "a.jpg"}))
}

func TestValidateRejectsCorruptData(t *testing.T) {
	v := NewValidator(ValidatorConfig{})

	requireValidationKind(t, v.Validate(ImageSource{Data: []byte("not an image"), Filename: "a.jpg"}), ValidationCorruptImage)
	requireValidationKind(t, v.Validate(ImageSource{Data: nil, Filename: "a.jpg"}), ValidationCorruptImage)

	// valid header, body chopped off mid-scan
	truncated := newTestJPEG(200, 200)
	truncated = truncated[:len(truncated)/2]
	requireValidationKind(t, v.Validate(ImageSource{Data: truncated, Filename: "a.jpg"}), ValidationCorruptImage)
}

func TestValidateDimensionCeilingIsInclusive(t *testing.T) {
	v := NewValidator(ValidatorConfig{MaxPixelDimension: 64})

	assert.NoError(t, v.Validate(ImageSource{Data: newTestJPEG(64, 64), Filename: "a.jpg"}))
	requireValidationKind(t, v.Validate(ImageSource{Data: newTestJPEG(65, 64), Filename: "a.jpg"}), ValidationDimensionTooLarge)
	requireValidationKind(t, v.Validate(ImageSource{Data: newTestJPEG(64, 65), Filename: "a.jpg"}), ValidationDimensionTooLarge)
}

func TestValidateIsPure(t *testing.T) {
	v := NewValidator(ValidatorConfig{})
	data := newTestJPEG(80, 80)
	before := make([]byte, len(data))
	copy(before, data)

	require.NoError(t, v.Validate(ImageSource{Data: data, Filename: "a.jpg"}))
	assert.Equal(t, before, data, "validation must not mutate the source bytes")

	// the same bytes validate again, there is no consumed stream state
	require.NoError(t, v.Validate(ImageSource{Data: data, Filename: "a.jpg"}))
}
