package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/germain250/quizly/internal/domain"
)

func TestBankRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string]domain.Category{
			"general-knowledge": sampleCategory(),
		}),
	}
	repo := NewBankRepository(loader, time.Minute)

	if _, err := repo.GetCategory(context.Background(), "general-knowledge"); err != nil {
		t.Fatalf("get category: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	category, err := repo.GetCategory(context.Background(), "general-knowledge")
	if err != nil {
		t.Fatalf("get category 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(category.Questions) != 1 || category.Questions[0].Answer != "4" {
		t.Fatalf("unexpected cached category: %+v", category)
	}
}

func TestBankRepositoryUnknownCategory(t *testing.T) {
	repo := NewBankRepository(NewStaticBankLoader(nil), time.Minute)

	_, err := repo.GetCategory(context.Background(), "nope")
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected category-not-found, got %v", err)
	}
}

type countingLoader struct {
	BankLoader
	calls int
}

func (l *countingLoader) LoadCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	l.calls++
	return l.BankLoader.LoadCategory(ctx, categoryID)
}

func sampleCategory() domain.Category {
	return domain.Category{
		ID: "general-knowledge",
		Questions: []domain.Question{
			{
				ID:      "q1",
				Prompt:  "What is 2 + 2?",
				Options: []string{"3", "4", "5"},
				Answer:  "4",
			},
		},
	}
}
