package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// activeは「期限内 かつ 未revoke」の厳密なAND
func TestRefreshToken_Active(t *testing.T) {
	now := time.Now()
	revoked := now.Add(-time.Hour)

	tests := []struct {
		name      string
		expiresAt time.Time
		revokedAt *time.Time
		want      bool
	}{
		{"期限内かつ未revoke", now.Add(time.Hour), nil, true},
		{"期限切れ", now.Add(-time.Minute), nil, false},
		{"revoke済み", now.Add(time.Hour), &revoked, false},
		{"期限切れかつrevoke済み", now.Add(-time.Minute), &revoked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := RefreshToken{ExpiresAt: tt.expiresAt, RevokedAt: tt.revokedAt}
			assert.Equal(t, tt.want, rt.Active(now))
		})
	}
}
