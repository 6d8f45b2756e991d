package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/models"
	"hikayat/internal/notice"
)

// documents reads and writes the JSON values kept under profile keys.
type documents struct {
	log logging.Logger
}

// readDocument decodes the value under key. A missing key yields the zero value.
// An undecodable value is removed, so the collection starts over empty, and the
// reset is reported to the request through notice. Inside a transaction the
// report waits for the commit.
func readDocument[T any](ctx context.Context, d documents, local localstore.Local, key string) (T, error) {
	var value T

	raw, ok, err := local.GetItem(ctx, key)
	if err != nil {
		return value, fmt.Errorf("ошибка при чтении %q: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return value, nil
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		d.log.Warn(ctx, "обнаружены повреждённые данные", "key", key, "error", err)

		if err := local.RemoveItem(ctx, key); err != nil {
			return *new(T), errors.Join(models.ErrStorageCorrupt, err)
		}

		report := func() { notice.Add(ctx, fmt.Sprintf("%s: %s was reset", models.ErrStorageCorrupt, key)) }
		if c, ok := local.(localstore.Committer); ok {
			c.AfterCommit(report)
		} else {
			report()
		}
		return *new(T), nil
	}

	return value, nil
}

func writeDocument[T any](ctx context.Context, local localstore.Local, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации %q: %w", key, err)
	}

	if err := local.SetItem(ctx, key, raw); err != nil {
		return fmt.Errorf("ошибка при записи %q: %w", key, err)
	}

	return nil
}
