package workers

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/camden-git/menusysbackend/database"
	"github.com/camden-git/menusysbackend/media"
)

// CleanupJob names one stored file slated for best-effort deletion
type CleanupJob struct {
	RelativePath string
}

// FileCleanup deletes superseded variant files in the background so a save or
// update never waits on (or fails because of) file deletion. Failures are
// logged and dropped; a file that survives a failed delete is caught again by
// the orphan sweep.
type FileCleanup struct {
	JobQueue chan CleanupJob
	Store    media.Store
	DB       *sql.DB // variant index; may be nil when no index is kept
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex
}

func NewFileCleanup(store media.Store, db *sql.DB, queueSize, numWorkers int) *FileCleanup {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	fc := &FileCleanup{
		JobQueue: make(chan CleanupJob, queueSize),
		Store:    store,
		DB:       db,
		StopChan: make(chan struct{}),
		Pending:  make(map[string]bool),
	}

	fc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go fc.worker(i)
	}
	log.Printf("started %d cleanup worker(s) with queue size %d", numWorkers, queueSize)

	return fc
}

// Enqueue schedules deletion for each path, skipping paths already pending.
// A full queue drops the job with a log line rather than blocking the caller;
// the orphan sweep picks up anything dropped here.
func (fc *FileCleanup) Enqueue(paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}

		fc.Mutex.Lock()
		if fc.Pending[path] {
			fc.Mutex.Unlock()
			continue
		}
		fc.Pending[path] = true
		fc.Mutex.Unlock()

		select {
		case fc.JobQueue <- CleanupJob{RelativePath: path}:
		default:
			fc.Mutex.Lock()
			delete(fc.Pending, path)
			fc.Mutex.Unlock()
			log.Printf("cleanup queue full, dropping delete for %s", path)
		}
	}
}

func (fc *FileCleanup) worker(id int) {
	defer fc.Wg.Done()
	log.Printf("cleanup worker %d started", id)
	for {
		select {
		case job, ok := <-fc.JobQueue:
			if !ok {
				log.Printf("cleanup worker %d stopping: job queue closed", id)
				return
			}
			fc.processJob(job)
			fc.Mutex.Lock()
			delete(fc.Pending, job.RelativePath)
			fc.Mutex.Unlock()

		case <-fc.StopChan:
			log.Printf("cleanup worker %d stopping: stop signal received", id)
			return
		}
	}
}

// processJob deletes one file and its index row. Both steps are best-effort.
func (fc *FileCleanup) processJob(job CleanupJob) {
	if err := fc.Store.Delete(job.RelativePath); err != nil {
		log.Printf("cleanup: failed to delete %s: %v", job.RelativePath, err)
	}
	if fc.DB != nil {
		if err := database.DeleteVariantPaths(fc.DB, []string{job.RelativePath}); err != nil {
			log.Printf("cleanup: failed to remove index row for %s: %v", job.RelativePath, err)
		}
	}
}

// SweepOrphans reconciles the variant index with the files actually on disk:
// index rows whose file vanished are dropped, and unindexed files in the menu
// image directory are enqueued for deletion unless a live menu item still
// references their subject key. Intended to run at startup.
func (fc *FileCleanup) SweepOrphans() {
	if fc.DB == nil {
		return
	}

	indexed, err := database.ListAllVariantPaths(fc.DB)
	if err != nil {
		log.Printf("cleanup: orphan sweep aborted, cannot list index: %v", err)
		return
	}

	var stale []string
	for path := range indexed {
		fullPath, err := fc.Store.GetFullPath(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			stale = append(stale, path)
		}
	}
	if len(stale) > 0 {
		if err := database.DeleteVariantPaths(fc.DB, stale); err != nil {
			log.Printf("cleanup: failed to drop %d stale index rows: %v", len(stale), err)
		} else {
			log.Printf("cleanup: dropped %d index rows for missing files", len(stale))
		}
	}

	menuDir, err := fc.Store.EnsureDir(media.AssetTypeMenuImage)
	if err != nil {
		log.Printf("cleanup: orphan sweep cannot resolve menu image directory: %v", err)
		return
	}
	entries, err := os.ReadDir(menuDir)
	if err != nil {
		log.Printf("cleanup: orphan sweep cannot read %s: %v", menuDir, err)
		return
	}

	subDir := filepath.Base(menuDir)
	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		relPath := filepath.ToSlash(filepath.Join(subDir, entry.Name()))
		if !indexed[relPath] {
			candidates = append(candidates, relPath)
		}
	}
	if len(candidates) == 0 {
		return
	}

	// an unindexed file is not necessarily garbage: the index write can fail
	// after an upload while the item record keeps serving the files through
	// the store probe. Files whose subject key is still referenced by a live
	// item are left alone.
	live, err := database.ListLiveSubjectKeys(fc.DB)
	if err != nil {
		log.Printf("cleanup: orphan sweep cannot list live subject keys, skipping file deletion: %v", err)
		return
	}

	var orphans []string
	for _, relPath := range candidates {
		if key, ok := media.SubjectKeyFromFilename(filepath.Base(relPath)); ok && live[key] {
			continue
		}
		orphans = append(orphans, relPath)
	}
	if len(orphans) > 0 {
		log.Printf("cleanup: sweeping %d orphaned variant file(s)", len(orphans))
		fc.Enqueue(orphans)
	}
}

// Stop signals workers to exit and waits for in-flight deletes to finish
func (fc *FileCleanup) Stop() {
	close(fc.StopChan)
	fc.Wg.Wait()
	log.Println("cleanup workers stopped")
}
