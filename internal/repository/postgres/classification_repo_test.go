package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
)

func TestClassificationCreateAssignsID(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewClassificationRepository(pool)
	ctx := context.Background()

	node := &model.ClassificationNode{
		Code:   "1",
		NameCs: "Budovy",
		Level:  1,
	}
	if err := repo.Create(ctx, node); err != nil {
		t.Fatalf("create node: %v", err)
	}
	if node.ID == 0 {
		t.Fatal("expected RETURNING id to populate the node")
	}

	got, err := repo.FindByID(ctx, node.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Code != "1" || got.NameCs != "Budovy" || got.Level != 1 {
		t.Fatalf("unexpected node: %+v", got)
	}
}

func TestClassificationCreateDuplicateCode(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewClassificationRepository(pool)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.ClassificationNode{Code: "1", NameCs: "Budovy", Level: 1}); err != nil {
		t.Fatalf("create first node: %v", err)
	}

	err := repo.Create(ctx, &model.ClassificationNode{Code: "1", NameCs: "Duplicitní", Level: 1})
	if !errors.Is(err, repository.ErrCodeExists) {
		t.Fatalf("expected ErrCodeExists, got %v", err)
	}
}

func TestClassificationChildrenQueries(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewClassificationRepository(pool)
	ctx := context.Background()

	root := &model.ClassificationNode{Code: "1", NameCs: "Budovy", Level: 1}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatalf("create root: %v", err)
	}

	for _, code := range []string{"1.2", "1.1"} {
		child := &model.ClassificationNode{Code: code, NameCs: "Podkategorie " + code, Level: 2, ParentID: &root.ID}
		if err := repo.Create(ctx, child); err != nil {
			t.Fatalf("create child %s: %v", code, err)
		}
	}

	count, err := repo.CountChildren(ctx, root.ID)
	if err != nil {
		t.Fatalf("CountChildren: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 children, got %d", count)
	}

	children, err := repo.FindChildren(ctx, root.ID)
	if err != nil {
		t.Fatalf("FindChildren: %v", err)
	}
	if len(children) != 2 || children[0].Code != "1.1" || children[1].Code != "1.2" {
		t.Fatalf("children must be ordered by code, got %+v", children)
	}
}

func TestClassificationDeleteCascadesNothing(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewClassificationRepository(pool)
	ctx := context.Background()

	root := &model.ClassificationNode{Code: "1", NameCs: "Budovy", Level: 1}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatalf("create root: %v", err)
	}
	child := &model.ClassificationNode{Code: "1.1", NameCs: "Rodinné domy", Level: 2, ParentID: &root.ID}
	if err := repo.Create(ctx, child); err != nil {
		t.Fatalf("create child: %v", err)
	}

	if err := repo.Delete(ctx, child.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}
	if _, err := repo.FindByID(ctx, child.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := repo.FindByID(ctx, root.ID); err != nil {
		t.Fatalf("root must survive child deletion: %v", err)
	}
}

func TestClassificationFindExpiredBetween(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewClassificationRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	expired := now.Add(-2 * time.Hour)
	future := now.Add(24 * time.Hour)

	nodes := []*model.ClassificationNode{
		{Code: "1", NameCs: "Expirovaná", Level: 1, ValidTo: &expired},
		{Code: "2", NameCs: "Platná", Level: 1, ValidTo: &future},
		{Code: "3", NameCs: "Bez konce platnosti", Level: 1},
	}
	for _, node := range nodes {
		if err := repo.Create(ctx, node); err != nil {
			t.Fatalf("create %s: %v", node.Code, err)
		}
	}

	found, err := repo.FindExpiredBetween(ctx, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("FindExpiredBetween: %v", err)
	}
	if len(found) != 1 || found[0].Code != "1" {
		t.Fatalf("expected only the expired node, got %+v", found)
	}
}

func TestAuditCreateAndFindByID(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewAuditRepository(pool)
	ctx := context.Background()

	newValues := `{"code":"VN","nameCs":"Vysoké napětí"}`
	entry := &model.AuditEntry{
		EntityType: "VoltageLevel",
		EntityID:   7,
		EntityCode: "VN",
		ChangeType: model.ChangeTypeCreate,
		ChangedBy:  "editor1",
		ChangedAt:  time.Now().UTC(),
		NewValues:  &newValues,
	}
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("create audit entry: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("expected RETURNING id to populate the entry")
	}

	got, err := repo.FindByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.EntityType != "VoltageLevel" || got.ChangeType != model.ChangeTypeCreate {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.OldValues != nil {
		t.Fatalf("CREATE entry must have null old_values, got %q", *got.OldValues)
	}
	if got.NewValues == nil || *got.NewValues != newValues {
		t.Fatalf("unexpected new_values: %v", got.NewValues)
	}
}

func TestAuditFindByID_NotFound(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewAuditRepository(pool)

	entry, err := repo.FindByID(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil entry, got %+v", entry)
	}
}

func startPostgresForTest(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "ciselnik_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping test because docker/testcontainers is unavailable: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/ciselnik_test?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	deadline := time.Now().Add(30 * time.Second)
	for {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("postgres did not become ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	applyAllMigrations(t, ctx, pool)
	return pool
}

func applyAllMigrations(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	migrationsDir := filepath.Join(findRepoRoot(t), "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		// #nosec G304 -- migration file list comes from controlled test directory.
		raw, err := os.ReadFile(filepath.Join(migrationsDir, file))
		if err != nil {
			t.Fatalf("read migration %s: %v", file, err)
		}
		if strings.TrimSpace(string(raw)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(raw)); err != nil {
			t.Fatalf("apply migration %s: %v", file, err)
		}
	}
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not locate repository root")
		}
		dir = parent
	}
}
