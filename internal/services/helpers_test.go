package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-pet-adoption/internal/domain"
	"github.com/tbourn/go-pet-adoption/internal/repo"
	"github.com/tbourn/go-pet-adoption/internal/storage"
)

// ---------- test helpers ----------

// openDB opens a fresh in-memory database with the full schema. A single
// connection keeps PRAGMA foreign_keys effective and serialises
// transactions the way SQLite's writer lock does on disk.
func openDB(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := openDB("svc")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newFiles() *storage.LocalStore {
	return storage.NewLocalStore(afero.NewMemMapFs(), "http://pets.test")
}

// failingDeletes wraps a store and fails every Delete.
type failingDeletes struct {
	*storage.LocalStore
	mu    sync.Mutex
	tried []string
}

func (f *failingDeletes) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tried = append(f.tried, ref)
	return errors.New("disk on fire")
}

// failingStores fails every Store.
type failingStores struct{ *storage.LocalStore }

func (failingStores) Store(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("bucket unavailable")
}

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 32)...)
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<<>>\n%%EOF\n")
)

func upload(name string, data []byte) *Upload {
	return &Upload{Filename: name, Content: bytes.NewReader(data)}
}

const goodMessage = "We have a fenced yard and work from home every day."

func seedPet(t *testing.T, db *gorm.DB, owner string) *domain.Pet {
	t.Helper()
	p := &domain.Pet{UserID: owner, Name: "Rex", Category: domain.CategoryDog, ListingType: domain.ListingAdopt}
	if err := repo.CreatePet(context.Background(), db, p); err != nil {
		t.Fatalf("seed pet: %v", err)
	}
	return p
}

func seedPending(t *testing.T, svc *RequestService, user, petID string) *RequestView {
	t.Helper()
	v, err := svc.Create(context.Background(), user, RequestInput{PetID: petID, Message: goodMessage})
	if err != nil {
		t.Fatalf("seed request by %s: %v", user, err)
	}
	return v
}

func reload(t *testing.T, db *gorm.DB, requestID string) *domain.AdoptionRequest {
	t.Helper()
	r, err := repo.GetRequest(context.Background(), db, requestID)
	if err != nil {
		t.Fatalf("reload request %s: %v", requestID, err)
	}
	return r
}

func reloadPet(t *testing.T, db *gorm.DB, petID string) *domain.Pet {
	t.Helper()
	p, err := repo.GetPet(context.Background(), db, petID)
	if err != nil {
		t.Fatalf("reload pet %s: %v", petID, err)
	}
	return p
}

// historyFor returns the ledger entry produced by requestID, or nil.
func historyFor(t *testing.T, db *gorm.DB, requestID string) *domain.AdoptionHistory {
	t.Helper()
	var hs []domain.AdoptionHistory
	if err := db.Where("adoption_request_id = ?", requestID).Find(&hs).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(hs) == 0 {
		return nil
	}
	return &hs[0]
}
