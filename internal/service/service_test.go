package service

import (
	"errors"
	"testing"

	"github.com/fleetwatch/fleetwatch/internal/store"
)

func setupService(t *testing.T) (*Service, *store.DB) {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	if err := db.InitSchema(); err != nil {
		t.Fatalf("initializing schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, nil), db
}

func TestCreateAndListProducts(t *testing.T) {
	svc, _ := setupService(t)

	if err := svc.CreateProduct("frontend", []string{"webapp"}); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	products, err := svc.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 1 || products[0].Name != "frontend" {
		t.Errorf("unexpected products: %+v", products)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := setupService(t)

	if err := svc.CreateProduct("", []string{"webapp"}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := svc.CreateProduct("frontend", nil); err == nil {
		t.Error("expected error for empty tags")
	}
}

func TestCreateProductDuplicateIsOpaque(t *testing.T) {
	svc, _ := setupService(t)

	if err := svc.CreateProduct("frontend", []string{"webapp"}); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	err := svc.CreateProduct("frontend", []string{"other"})
	if !errors.Is(err, ErrCreateProduct) {
		t.Errorf("expected opaque ErrCreateProduct, got %v", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	svc, db := setupService(t)

	if err := svc.CreateProduct("frontend", []string{"webapp"}); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	products, _ := db.GetAllProducts()

	if err := svc.DeleteProduct(products[0].ID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}

	err := svc.DeleteProduct(products[0].ID)
	if !errors.Is(err, ErrDeleteProduct) {
		t.Errorf("expected opaque ErrDeleteProduct for a missing product, got %v", err)
	}
}

func TestListSecurityAdvisoriesDefaultLimit(t *testing.T) {
	svc, db := setupService(t)

	repo := store.Repository{ID: "r1", Name: "acme/web", URL: "u", Topic: "webapp", Owner: "acme"}
	if err := db.BulkInsertRepositories([]store.Repository{repo}); err != nil {
		t.Fatalf("seeding repository: %v", err)
	}

	var findings []store.SecurityFinding
	for i := 0; i < 15; i++ {
		findings = append(findings, store.SecurityFinding{
			ID:           string(rune('a' + i)),
			ExternalID:   "GHSA-" + string(rune('a'+i)),
			RepositoryID: "r1",
			PackageName:  "pkg",
			State:        "OPEN",
			Severity:     "LOW",
		})
	}
	if err := db.BulkInsertSecurityFindings(findings); err != nil {
		t.Fatalf("seeding findings: %v", err)
	}

	if err := svc.CreateProduct("frontend", []string{"webapp"}); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	products, _ := db.GetAllProducts()

	advisories, err := svc.ListSecurityAdvisoriesForProduct(products[0].ID, 0)
	if err != nil {
		t.Fatalf("ListSecurityAdvisoriesForProduct failed: %v", err)
	}
	if len(advisories) != DefaultAdvisoryLimit {
		t.Errorf("expected default limit of %d, got %d", DefaultAdvisoryLimit, len(advisories))
	}

	advisories, err = svc.ListSecurityAdvisoriesForProduct(products[0].ID, 3)
	if err != nil {
		t.Fatalf("ListSecurityAdvisoriesForProduct with limit failed: %v", err)
	}
	if len(advisories) != 3 {
		t.Errorf("expected caller limit of 3, got %d", len(advisories))
	}
}

func TestListAdvisoriesForMissingProductIsOpaque(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.ListSecurityAdvisoriesForProduct("missing", 0)
	if !errors.Is(err, ErrFetchAdvisories) {
		t.Errorf("expected opaque ErrFetchAdvisories, got %v", err)
	}
}

func TestListRepositoriesForProduct(t *testing.T) {
	svc, db := setupService(t)

	repo := store.Repository{ID: "r1", Name: "acme/web", URL: "u", Topic: "webapp", Owner: "acme"}
	if err := db.BulkInsertRepositories([]store.Repository{repo}); err != nil {
		t.Fatalf("seeding repository: %v", err)
	}
	if err := svc.CreateProduct("frontend", []string{"webapp"}); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	products, _ := db.GetAllProducts()

	repos, err := svc.ListRepositoriesForProduct(products[0].ID)
	if err != nil {
		t.Fatalf("ListRepositoriesForProduct failed: %v", err)
	}
	if len(repos) != 1 || repos[0].Name != "acme/web" {
		t.Errorf("unexpected repositories: %+v", repos)
	}
}

func TestListProductTags(t *testing.T) {
	svc, _ := setupService(t)

	if err := svc.CreateProduct("frontend", []string{"webapp", "ui"}); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if err := svc.CreateProduct("platform", []string{"infra", "ui"}); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	tags, err := svc.ListProductTags()
	if err != nil {
		t.Fatalf("ListProductTags failed: %v", err)
	}
	if len(tags) != 3 {
		t.Errorf("expected 3 deduplicated tags, got %v", tags)
	}
}

func TestUpdateProduct(t *testing.T) {
	svc, db := setupService(t)

	if err := svc.CreateProduct("frontend", []string{"webapp"}); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	products, _ := db.GetAllProducts()

	if err := svc.UpdateProduct(products[0].ID, "front-end", []string{"webapp", "ui"}); err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}

	got, err := svc.GetProduct(products[0].ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got.Name != "front-end" || len(got.Tags) != 2 {
		t.Errorf("update not applied: %+v", got)
	}
}
