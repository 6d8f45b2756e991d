package repository

import (
	"context"
	"fmt"
	"slices"

	"hikayat/internal/localstore"
	"hikayat/internal/models"
)

// relations are stored as {"<userId>": ["<target>", ...]}.
type relations map[string][]string

type reactionRepository struct {
	docs documents
}

func NewReactionRepository(docs documents) ReactionRepository {
	return &reactionRepository{docs: docs}
}

func checkRelation(relation string) error {
	if relation != models.KeyLikes && relation != models.KeyFollows {
		return fmt.Errorf("неизвестное отношение %q", relation)
	}
	return nil
}

func (r *reactionRepository) load(ctx context.Context, local localstore.Local, relation string) (relations, error) {
	if err := checkRelation(relation); err != nil {
		return nil, err
	}

	rel, err := readDocument[relations](ctx, r.docs, local, relation)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении %s: %w", relation, err)
	}
	if rel == nil {
		rel = relations{}
	}

	return rel, nil
}

// Toggle adds target to the set of userID, or removes it when present.
// It reports whether the target is set afterwards.
func (r *reactionRepository) Toggle(ctx context.Context, local localstore.Local, relation, userID, target string) (bool, error) {
	rel, err := r.load(ctx, local, relation)
	if err != nil {
		return false, err
	}

	targets := rel[userID]
	active := false
	if i := slices.Index(targets, target); i >= 0 {
		targets = slices.Delete(targets, i, i+1)
	} else {
		targets = append(targets, target)
		active = true
	}

	if len(targets) == 0 {
		delete(rel, userID)
	} else {
		rel[userID] = targets
	}

	if err := writeDocument(ctx, local, relation, rel); err != nil {
		return false, fmt.Errorf("ошибка при обновлении %s: %w", relation, err)
	}

	return active, nil
}

func (r *reactionRepository) Targets(ctx context.Context, local localstore.Local, relation, userID string) ([]string, error) {
	rel, err := r.load(ctx, local, relation)
	if err != nil {
		return nil, err
	}

	targets := slices.Clone(rel[userID])
	if targets == nil {
		targets = []string{}
	}

	return targets, nil
}

// Count returns how many users hold target.
func (r *reactionRepository) Count(ctx context.Context, local localstore.Local, relation, target string) (int, error) {
	rel, err := r.load(ctx, local, relation)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, targets := range rel {
		if slices.Contains(targets, target) {
			count++
		}
	}

	return count, nil
}

func (r *reactionRepository) RemoveTarget(ctx context.Context, local localstore.Local, relation, target string) error {
	rel, err := r.load(ctx, local, relation)
	if err != nil {
		return err
	}

	changed := false
	for userID, targets := range rel {
		if i := slices.Index(targets, target); i >= 0 {
			targets = slices.Delete(targets, i, i+1)
			changed = true
			if len(targets) == 0 {
				delete(rel, userID)
			} else {
				rel[userID] = targets
			}
		}
	}
	if !changed {
		return nil
	}

	if err := writeDocument(ctx, local, relation, rel); err != nil {
		return fmt.Errorf("ошибка при обновлении %s: %w", relation, err)
	}

	return nil
}
