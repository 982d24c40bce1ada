package globalize

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-globalize/internal/translations"
)

// Translations holds the per-instance translation state of a record. Embed
// it in every translatable model, tagged so bun skips it:
//
//	type Post struct {
//		bun.BaseModel          `bun:"table:posts,alias:p"`
//		globalize.Translations `bun:"-"`
//
//		ID     uuid.UUID `bun:"id,pk,type:uuid"`
//		BlogID int64     `bun:"blog_id"`
//	}
type Translations struct {
	cache *translations.AttributeCache
}

func (t *Translations) globalizeTranslations() *Translations {
	return t
}

func (t *Translations) attributeCache() *translations.AttributeCache {
	if t.cache == nil {
		t.cache = translations.NewAttributeCache()
	}
	return t.cache
}

// DirtyLocales lists locales with unsaved translated values.
func (t *Translations) DirtyLocales() []string {
	return t.attributeCache().DirtyLocales()
}

// Record is implemented by struct pointers that carry a uuid primary key and
// embed Translations.
type Record interface {
	GetID() uuid.UUID
	SetID(uuid.UUID)
	globalizeTranslations() *Translations
}

type (
	// Translation is the outcome of a translated attribute lookup.
	Translation = translations.Translation
	// Row is one stored translation row.
	Row = translations.Row
)
