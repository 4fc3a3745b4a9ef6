package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"qrstudio-backend/internal/models"
)

type memoryDesignRepo struct {
	nextID  uint
	designs map[uint]models.Design
}

func (r *memoryDesignRepo) Create(ctx context.Context, design *models.Design) error {
	r.nextID++
	design.ID = r.nextID
	r.designs[design.ID] = *design
	return nil
}

func (r *memoryDesignRepo) GetByID(ctx context.Context, id uint) (*models.Design, error) {
	design, ok := r.designs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &design, nil
}

func (r *memoryDesignRepo) List(ctx context.Context, kind string, limit, offset int) ([]models.Design, int64, error) {
	var out []models.Design
	for id := uint(1); id <= r.nextID; id++ {
		design, ok := r.designs[id]
		if ok && (kind == "" || design.Kind == kind) {
			out = append(out, design)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryDesignRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.designs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.designs, id)
	return nil
}

func TestDesignServiceRecomputesPayload(t *testing.T) {
	repo := &memoryDesignRepo{designs: map[uint]models.Design{}}
	svc := NewDesignService(repo, NewQRService("https://qr.example.com/m"))
	ctx := context.Background()

	opts := models.VisualOptions{DotStyle: models.DotRounded}
	design, err := svc.Create(ctx, models.CreateDesignRequest{
		Name:    "Front desk",
		Kind:    "phone",
		Fields:  map[string]string{"phone": "+15550100"},
		Options: opts,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if design.Payload != "tel:+15550100" {
		t.Fatalf("unexpected payload %q", design.Payload)
	}
	stored := design.Options.Data()
	if stored.DotStyle != models.DotRounded || stored.Width != 300 {
		t.Fatalf("expected normalized options, got %+v", stored)
	}

	list, total, err := svc.List(ctx, "phone", 0, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("unexpected list %v %d %v", list, total, err)
	}

	if err := svc.Delete(ctx, design.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, design.ID); !errors.Is(err, ErrDesignNotFound) {
		t.Fatalf("expected ErrDesignNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, design.ID); !errors.Is(err, ErrDesignNotFound) {
		t.Fatalf("expected ErrDesignNotFound on second delete, got %v", err)
	}
}

func TestDesignServiceRejectsUnknownKind(t *testing.T) {
	repo := &memoryDesignRepo{designs: map[uint]models.Design{}}
	svc := NewDesignService(repo, NewQRService(""))
	if _, err := svc.Create(context.Background(), models.CreateDesignRequest{Name: "x", Kind: "fax"}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if len(repo.designs) != 0 {
		t.Fatal("nothing should be stored for an unknown kind")
	}
}
