package profiles

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &cli.Context{Store: store, Person: "me"}
}

func TestProfileSetCmd(t *testing.T) {
	ctx := setupTestDB(t)

	cmd := &ProfileSetCmd{Wake: "06:30", Sleep: "01:00", Timezone: "Europe/Berlin"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("profile set failed: %v", err)
	}

	p, err := ctx.Store.GetProfile(context.Background(), "me")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.Wake != "06:30" || p.Sleep != "01:00" || p.Timezone != "Europe/Berlin" {
		t.Errorf("unexpected profile %+v", p)
	}

	if err := (&ProfileSetCmd{Person: "ana", Wake: "08:00", Sleep: "23:00"}).Run(ctx); err != nil {
		t.Fatalf("profile set for ana failed: %v", err)
	}
	if _, err := ctx.Store.GetProfile(context.Background(), "ana"); err != nil {
		t.Errorf("profile for ana not stored: %v", err)
	}
}

func TestProfileSetCmd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  ProfileSetCmd
	}{
		{"bad wake", ProfileSetCmd{Wake: "6", Sleep: "22:00"}},
		{"bad sleep", ProfileSetCmd{Wake: "06:00", Sleep: "24:30"}},
		{"zero length day", ProfileSetCmd{Wake: "07:00", Sleep: "07:00"}},
		{"bad timezone", ProfileSetCmd{Wake: "07:00", Sleep: "22:00", Timezone: "Nowhere/Land"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestDB(t)
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProfileShowCmd(t *testing.T) {
	ctx := setupTestDB(t)

	if err := (&ProfileShowCmd{}).Run(ctx); err != nil {
		t.Errorf("show without profile failed: %v", err)
	}
	if err := (&ProfileSetCmd{Wake: "07:00", Sleep: "22:00"}).Run(ctx); err != nil {
		t.Fatalf("profile set failed: %v", err)
	}
	if err := (&ProfileShowCmd{}).Run(ctx); err != nil {
		t.Errorf("show failed: %v", err)
	}
	if err := (&ProfileShowCmd{All: true}).Run(ctx); err != nil {
		t.Errorf("show --all failed: %v", err)
	}
}
