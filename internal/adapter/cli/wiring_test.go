package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"payment_installments/internal/adapter/cli/dto/response"
)

func sqliteEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_BACKEND", "sql")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:"+filepath.Join(t.TempDir(), "payments.db")+"?_foreign_keys=on")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("MIGRATIONS", "")
}

func runReal(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, BuildApp, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestBuildApp_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "mongo")
	if _, err := BuildApp(context.Background()); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestCLI_EndToEndOnSQLite(t *testing.T) {
	sqliteEnv(t)

	stdout, stderr, code := runReal(t, "create", "--transaction-id", "TXN-E2E", "--amount", "1000",
		"--method", "BANK_TRANSFER", "--installment", "400")
	if code != 0 {
		t.Fatalf("create exit %d: %s", code, stderr)
	}
	var created response.PaymentResponse
	if err := json.Unmarshal([]byte(stdout), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.PaymentStatus != "CICILAN" || len(created.Installments) != 1 {
		t.Fatalf("unexpected create output: %+v", created)
	}

	stdout, stderr, code = runReal(t, "installment", created.ID, "--amount", "600")
	if code != 0 {
		t.Fatalf("installment exit %d: %s", code, stderr)
	}
	var withInst response.PaymentResponse
	if err := json.Unmarshal([]byte(stdout), &withInst); err != nil {
		t.Fatalf("decode installment: %v", err)
	}
	if len(withInst.Installments) != 2 || withInst.Outstanding != "0.00" {
		t.Fatalf("unexpected installment output: %+v", withInst)
	}

	stdout, _, code = runReal(t, "list", "--status", "installment")
	if code != 0 {
		t.Fatalf("list exit %d", code)
	}
	var listed []response.PaymentResponse
	if err := json.Unmarshal([]byte(stdout), &listed); err != nil || len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected list output: %s (%v)", stdout, err)
	}

	if _, stderr, code = runReal(t, "list", "--method", "barter"); code == 0 || !strings.Contains(stderr, "VALIDATION_ERROR") {
		t.Fatalf("expected validation failure, got %d %s", code, stderr)
	}

	if _, stderr, code = runReal(t, "delete", created.ID); code != 0 {
		t.Fatalf("delete exit %d: %s", code, stderr)
	}
	if _, stderr, code = runReal(t, "get", created.ID); code == 0 || !strings.Contains(stderr, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND after delete, got %d %s", code, stderr)
	}

	if _, stderr, code = runReal(t, "migrate"); code != 0 {
		t.Fatalf("migrate exit %d: %s", code, stderr)
	}
}
