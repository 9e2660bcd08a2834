// Package services – HistoryService
//
// This file exposes the adoption history ledger to its participants. Entries
// are written only by ApprovalService.Approve; this service reads them.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-adoption/internal/repo"
)

// HistoryService reads the adoption history ledger.
type HistoryService struct {
	DB    *gorm.DB
	Files FileStore
}

// ListForUser returns the adoptions userID took part in, as adopter or as
// the pet's original owner, most recent first.
func (s *HistoryService) ListForUser(ctx context.Context, userID string) ([]HistoryEntry, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "ListForUser", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	rows, err := repo.ListHistoryForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, historyEntry(s.Files, userID, row))
	}
	return out, nil
}
