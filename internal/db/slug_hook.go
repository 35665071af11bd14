package db

import (
	"context"
	"errors"
	"reflect"

	"gorm.io/gorm"

	"github.com/wheelhub/internal/metrics"
	"github.com/wheelhub/internal/slug"
)

const slugCallbackName = "wheelhub:assign_slug"

// Sluggable is implemented by models whose slug derives from a title.
type Sluggable interface {
	SlugTitle() string
	SlugOwnerID() uint
	SetSlug(string)
	// SlugTitleChanged reports whether the record is new or its title differs
	// from the last loaded or saved value.
	SlugTitleChanged() bool
}

// RegisterSlugHook installs the slug assigner before gorm writes rows.
// Records whose title is unchanged keep their slug.
func RegisterSlugHook(gdb *gorm.DB, assigner *slug.Assigner) error {
	if assigner == nil {
		return errors.New("slug assigner is required")
	}

	callback := assignSlugs(assigner)
	if err := gdb.Callback().Create().Before("gorm:create").Register(slugCallbackName, callback); err != nil {
		return err
	}
	return gdb.Callback().Update().Before("gorm:update").Register(slugCallbackName, callback)
}

func assignSlugs(assigner *slug.Assigner) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Schema == nil || !writesModel(tx.Statement) {
			return
		}

		records := sluggableRecords(tx.Statement.ReflectValue)
		if len(records) == 0 {
			return
		}

		table := tx.Statement.Table
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		// slugs handed out earlier in the same batch are not visible to the table yet
		pending := make(map[string]struct{}, len(records))
		oracle := batchOracle(TableSlugOracle(tx, table), pending)

		for _, record := range records {
			if !record.SlugTitleChanged() {
				continue
			}

			res, err := assigner.Resolve(ctx, record.SlugTitle(), record.SlugOwnerID(), oracle)
			metrics.ObserveSlugAssignment(table, res.Attempts, err)
			if err != nil {
				tx.AddError(err)
				return
			}

			record.SetSlug(res.Slug)
			pending[res.Slug] = struct{}{}
		}
	}
}

// TableSlugOracle checks the slug column of table. Soft-deleted rows count
// as taken because they still occupy the unique index.
func TableSlugOracle(tx *gorm.DB, table string) slug.Oracle {
	return slug.OracleFunc(func(ctx context.Context, candidate string, excludeID uint) (bool, error) {
		query := tx.Session(&gorm.Session{NewDB: true, Context: ctx}).
			Unscoped().
			Table(table).
			Where("slug = ?", candidate)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	})
}

func batchOracle(next slug.Oracle, pending map[string]struct{}) slug.Oracle {
	return slug.OracleFunc(func(ctx context.Context, candidate string, excludeID uint) (bool, error) {
		if _, taken := pending[candidate]; taken {
			return true, nil
		}
		return next.Exists(ctx, candidate, excludeID)
	})
}

// writesModel reports whether the statement persists the model value itself,
// as Create and Save do. Column updates through maps or a separate Dest are
// left alone.
func writesModel(stmt *gorm.Statement) bool {
	if stmt.Dest == nil || stmt.Model == nil {
		return true
	}
	dv, mv := reflect.ValueOf(stmt.Dest), reflect.ValueOf(stmt.Model)
	if dv.Kind() == reflect.Ptr && mv.Kind() == reflect.Ptr {
		return dv.Pointer() == mv.Pointer()
	}
	return dv.Kind() == mv.Kind() && dv.Kind() != reflect.Map
}

func sluggableRecords(rv reflect.Value) []Sluggable {
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		if record, ok := asSluggable(rv); ok {
			return []Sluggable{record}
		}
	case reflect.Slice, reflect.Array:
		records := make([]Sluggable, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i)
			for elem.Kind() == reflect.Ptr || elem.Kind() == reflect.Interface {
				if elem.IsNil() {
					break
				}
				elem = elem.Elem()
			}
			if record, ok := asSluggable(elem); ok {
				records = append(records, record)
			}
		}
		return records
	}
	return nil
}

func asSluggable(rv reflect.Value) (Sluggable, bool) {
	if rv.Kind() != reflect.Struct || !rv.CanAddr() {
		return nil, false
	}
	record, ok := rv.Addr().Interface().(Sluggable)
	return record, ok
}
