package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/portaldomei/mei-portal-go/internal/domain"
)

// ============================================================
// AdminStore implementation — panel credential via PostgREST
// ============================================================

type adminRow struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"password_hash"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until"`
}

func (c *Client) GetAdminByUsername(ctx context.Context, username string) (*domain.AdminCredential, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAdminByUsername")
	defer span.End()

	path := fmt.Sprintf("admin_credentials?username=eq.%s&limit=1", username)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "admin_credential", ID: username}
	}

	var rows []adminRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode admin_credentials: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "admin_credential", ID: username}
	}

	r := rows[0]
	return &domain.AdminCredential{
		ID:             r.ID,
		Username:       r.Username,
		PasswordHash:   r.PasswordHash,
		FailedAttempts: r.FailedAttempts,
		LockedUntil:    r.LockedUntil,
	}, nil
}

func (c *Client) UpdateAdminCredential(ctx context.Context, id string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAdminCredential")
	defer span.End()

	path := fmt.Sprintf("admin_credentials?id=eq.%s", id)
	return c.doPatch(ctx, path, updates)
}
