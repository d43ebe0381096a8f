package media

import (
	"bytes"
	"fmt"
	"image"
)

// Pipeline runs one upload through the full processing chain:
// validate, decode, orientation fix, variant generation. It is an explicit
// call path invoked by the caller's save flow; nothing here is triggered as a
// side effect of record mutation.
type Pipeline struct {
	validator *Validator
	processor *Processor
	store     Store
}

func NewPipeline(store Store, cfg ValidatorConfig) *Pipeline {
	return &Pipeline{
		validator: NewValidator(cfg),
		processor: NewProcessor(store),
		store:     store,
	}
}

// Validate exposes the validation step on its own, for callers that want to
// reject an upload before opening a transaction
func (p *Pipeline) Validate(src ImageSource) error {
	return p.validator.Validate(src)
}

// Process validates src and produces the stored variant set for subjectKey.
// The returned error is either a *ValidationError (user-facing, nothing
// written) or a *ProcessingError (operator-facing, partial writes already
// cleaned up). Callers replacing an existing image must persist the new set
// before deleting the old one.
func (p *Pipeline) Process(src ImageSource, subjectKey string) (DescriptorSet, error) {
	if subjectKey == "" {
		return DescriptorSet{}, &ProcessingError{
			Stage: StageStore,
			Err:   fmt.Errorf("subject key cannot be empty"),
		}
	}

	if err := p.validator.Validate(src); err != nil {
		return DescriptorSet{}, err
	}

	img, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		// validation decoded these bytes moments ago, so this is unexpected
		return DescriptorSet{}, &ValidationError{
			Kind:   ValidationCorruptImage,
			Detail: fmt.Sprintf("cannot decode image data: %v", err),
		}
	}

	img = NormalizeOrientation(src.Data, img)

	return p.processor.GenerateVariants(img, subjectKey)
}
