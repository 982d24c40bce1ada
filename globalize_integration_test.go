package globalize_test

import (
	"context"
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-globalize"
	translationscmd "github.com/goliatone/go-globalize/internal/commands/translations"
	"github.com/goliatone/go-globalize/pkg/testsupport"
)

type Post struct {
	bun.BaseModel          `bun:"table:posts,alias:p"`
	globalize.Translations `bun:"-"`

	ID     uuid.UUID `bun:"id,pk,type:uuid"`
	BlogID int64     `bun:"blog_id"`
}

func (p *Post) GetID() uuid.UUID   { return p.ID }
func (p *Post) SetID(id uuid.UUID) { p.ID = id }

func newPost(blogID int64) *Post { return &Post{BlogID: blogID} }

type fixture struct {
	db     *bun.DB
	module *globalize.Module
	posts  *globalize.Repository[*Post]
}

func setup(t *testing.T, mutate func(*globalize.Config), opts ...globalize.ModelOption) fixture {
	t.Helper()
	ctx := context.Background()

	db := testsupport.NewBunDB(t)
	_, err := db.NewCreateTable().Model((*Post)(nil)).Exec(ctx)
	require.NoError(t, err)

	cfg := globalize.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	module, err := globalize.New(cfg, db)
	require.NoError(t, err)

	opts = append([]globalize.ModelOption{globalize.WithFieldType("content", globalize.FieldText)}, opts...)
	posts, err := globalize.Translates[*Post](module, []string{"subject", "content"}, opts...)
	require.NoError(t, err)
	require.NoError(t, posts.CreateTranslationTable(ctx, nil))

	return fixture{db: db, module: module, posts: posts}
}

func countRows(t *testing.T, db *bun.DB, ownerID uuid.UUID, code string) int {
	t.Helper()
	count, err := db.NewSelect().
		TableExpr("post_translations").
		Where("post_id = ?", ownerID).
		Where("locale = ?", code).
		Count(context.Background())
	require.NoError(t, err)
	return count
}

func TestFallbackScenario(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	post := newPost(1)
	require.NoError(t, f.posts.WriteIn(ctx, post, "en", "subject", "Hello"))
	require.NoError(t, f.posts.Save(ctx, post))

	got, err := f.posts.ReadIn(ctx, post, "fr", "subject")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)

	require.NoError(t, f.module.SetFallbacks("fr", "en"))
	assert.Equal(t, []string{"fr", "en"}, f.module.FallbackChain("fr"))

	require.NoError(t, f.posts.WriteIn(ctx, post, "fr", "subject", "Bonjour"))
	got, err = f.posts.ReadIn(ctx, post, "fr", "subject")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got, "staged write is visible before save")

	require.NoError(t, f.posts.Save(ctx, post))
	require.NoError(t, f.posts.Reload(ctx, post))

	got, err = f.posts.ReadIn(ctx, post, "fr", "subject")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got)
	assert.Equal(t, 1, countRows(t, f.db, post.ID, "fr"))
}

func TestSkippedEmptyLocaleMatchesStoreAfterSave(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	post := newPost(1)
	require.NoError(t, f.posts.WriteIn(ctx, post, "en", "subject", "Hello"))
	require.NoError(t, f.posts.Save(ctx, post))

	require.NoError(t, f.posts.WriteIn(ctx, post, "fr", "subject", nil))
	require.NoError(t, f.posts.Save(ctx, post))
	assert.Equal(t, 0, countRows(t, f.db, post.ID, "fr"))

	afterSave, err := f.posts.ReadIn(ctx, post, "fr", "subject")
	require.NoError(t, err)

	require.NoError(t, f.posts.Reload(ctx, post))
	afterReload, err := f.posts.ReadIn(ctx, post, "fr", "subject")
	require.NoError(t, err)

	assert.Equal(t, "Hello", afterReload)
	assert.Equal(t, afterReload, afterSave, "cache must agree with the store once the empty row is skipped")

	locales, err := f.posts.TranslatedLocales(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, locales)
}

func TestFinderKeepsLocaleScopeForUnpairedTranslatedAttribute(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	translated := newPost(5)
	require.NoError(t, f.posts.WriteIn(ctx, translated, "de", "subject", "Hallo"))
	require.NoError(t, f.posts.Save(ctx, translated))

	untranslated := newPost(5)
	require.NoError(t, f.posts.Save(ctx, untranslated))

	found, err := f.posts.FindAllBy(ctx, []string{"blog_id", "subject"}, 5)
	require.NoError(t, err)
	assert.Empty(t, found, "no post has a row in the en chain")

	deCtx := globalize.WithLocale(ctx, "de")
	found, err = f.posts.FindAllBy(deCtx, []string{"blog_id", "subject"}, 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, translated.ID, found[0].ID)
}

func TestRequiredAttributeFailureRollsBackSave(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, globalize.WithRules("subject", validation.Required))
	assert.Equal(t, []string{"subject"}, f.posts.RequiredAttributes())

	post := newPost(1)
	require.NoError(t, f.posts.WriteIn(ctx, post, "en", "content", "body only"))

	err := f.posts.Save(ctx, post)
	require.Error(t, err)
	assert.True(t, errors.Is(err, globalize.ErrInvalidTranslation))

	var verr *globalize.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "en", verr.Locale)

	assert.Equal(t, uuid.Nil, post.ID, "failed insert leaves the record new")
	owners, err := f.db.NewSelect().Model((*Post)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, owners, "owner row rolled back")
	translations, err := f.db.NewSelect().TableExpr("post_translations").Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, translations)
	assert.Equal(t, []string{"en"}, post.DirtyLocales(), "staged values survive a failed save")

	require.NoError(t, f.posts.WriteIn(ctx, post, "en", "subject", "fixed"))
	require.NoError(t, f.posts.Save(ctx, post))
	assert.Empty(t, post.DirtyLocales())
}

func TestSaveLeavesUnwrittenLocalesAndSiblingAttributesAlone(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	post := newPost(1)
	require.NoError(t, f.posts.AssignLocale(ctx, post, "en", map[string]any{"subject": "Hello", "content": "Body"}))
	require.NoError(t, f.posts.Save(ctx, post))

	require.NoError(t, f.posts.WriteIn(ctx, post, "en", "subject", "Hi"))
	require.NoError(t, f.posts.Save(ctx, post))
	require.NoError(t, f.posts.Reload(ctx, post))

	attrs, err := f.posts.TranslatedAttributes(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"subject": "Hi", "content": "Body"}, attrs)

	assert.Equal(t, 0, countRows(t, f.db, post.ID, "de"))
	locales, err := f.posts.AvailableLocales(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, locales)
}

func TestResetDiscardsUnsavedWrites(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	post := newPost(1)
	require.NoError(t, f.posts.WriteIn(ctx, post, "en", "subject", "Stored"))
	require.NoError(t, f.posts.Save(ctx, post))

	require.NoError(t, f.posts.WriteIn(ctx, post, "en", "subject", "Unsaved"))
	require.NoError(t, f.posts.Reload(ctx, post))

	got, err := f.posts.ReadIn(ctx, post, "en", "subject")
	require.NoError(t, err)
	assert.Equal(t, "Stored", got)
}

func TestLocaleResolutionOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	post := newPost(1)
	require.NoError(t, f.posts.AssignLocale(ctx, post, "en", map[string]any{"subject": "Hello"}))
	require.NoError(t, f.posts.AssignLocale(ctx, post, "de", map[string]any{"subject": "Hallo"}))
	require.NoError(t, f.posts.AssignLocale(ctx, post, "fr", map[string]any{"subject": "Bonjour"}))
	require.NoError(t, f.posts.Save(ctx, post))

	assert.Equal(t, "en", f.posts.Locale(ctx))

	requestCtx := globalize.WithLocale(ctx, "fr")
	got, err := f.posts.Read(requestCtx, post, "subject")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got)

	f.posts.SetLocale("de")
	t.Cleanup(func() { f.posts.SetLocale("") })
	got, err = f.posts.Read(requestCtx, post, "subject")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", got, "model default beats request locale")

	err = f.posts.WithLocale(requestCtx, "en", func(ctx context.Context) error {
		got, err := f.posts.Read(ctx, post, "subject")
		require.NoError(t, err)
		assert.Equal(t, "Hello", got, "scoped locale beats model default")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "de", f.posts.Locale(requestCtx), "scope does not leak")

	got, err = f.posts.ReadIn(requestCtx, post, "fr", "subject")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got, "explicit locale wins")
}

func TestFindersAcrossFallbackChain(t *testing.T) {
	ctx := context.Background()
	f := setup(t, func(cfg *globalize.Config) {
		cfg.Fallbacks = map[string][]string{"de-at": {"de"}}
	})

	first := newPost(7)
	require.NoError(t, f.posts.AssignLocale(ctx, first, "de", map[string]any{"subject": "Hallo", "content": "Text"}))
	require.NoError(t, f.posts.Save(ctx, first))

	second := newPost(8)
	require.NoError(t, f.posts.AssignLocale(ctx, second, "en", map[string]any{"subject": "Hello", "content": "Text"}))
	require.NoError(t, f.posts.Save(ctx, second))

	atCtx := globalize.WithLocale(ctx, "de-AT")
	found, ok, err := f.posts.FindBy(atCtx, []string{"subject"}, "Hallo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, found.ID)

	found, ok, err = f.posts.FindBy(atCtx, []string{"subject", "blog_id"}, "Hello", 8)
	require.NoError(t, err)
	require.True(t, ok, "default locale is the last link of every chain")
	assert.Equal(t, second.ID, found.ID)

	all, err := f.posts.FindAllBy(atCtx, []string{"content"}, "Text")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, ok, err = f.posts.FindBy(ctx, []string{"subject"}, "Hallo")
	require.NoError(t, err)
	assert.False(t, ok, "de rows are outside the en chain")

	_, err = f.posts.MustFindBy(ctx, []string{"subject"}, "Hallo")
	var notFound *globalize.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Post", notFound.Model)
	assert.Equal(t, []any{"Hallo"}, notFound.Values)

	byName, err := f.posts.FindByName(atCtx, "find_all_by_blog_id", 7)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, first.ID, byName[0].ID)

	_, err = f.posts.FindByName(ctx, "find_or_create_by_subject", "x")
	assert.True(t, errors.Is(err, globalize.ErrUnknownFinder))

	_, _, err = f.posts.FindBy(ctx, []string{"title"}, "x")
	assert.True(t, errors.Is(err, globalize.ErrUnknownColumn))
}

func TestWithTranslationsPreloadsRows(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, globalize.WithRules("subject", validation.Required))

	complete := newPost(1)
	require.NoError(t, f.posts.AssignLocale(ctx, complete, "de", map[string]any{"subject": "Hallo"}))
	require.NoError(t, f.posts.Save(ctx, complete))

	other := newPost(2)
	require.NoError(t, f.posts.AssignLocale(ctx, other, "en", map[string]any{"subject": "Hello"}))
	require.NoError(t, f.posts.Save(ctx, other))

	records, err := f.posts.WithTranslations(ctx, "de")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, complete.ID, records[0].ID)

	// Drop the table rows to prove the value comes from the preloaded cache.
	_, err = f.db.NewDelete().TableExpr("post_translations").Where("1 = 1").Exec(ctx)
	require.NoError(t, err)
	got, err := f.posts.ReadIn(ctx, records[0], "de", "subject")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", got)
}

func TestSetTranslationsAndCommand(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	post := newPost(1)
	require.NoError(t, f.posts.Save(ctx, post))

	err := f.posts.SetTranslations(ctx, post, map[string]map[string]any{
		"en": {"subject": "Hello", "content": "Body"},
		"de": {"subject": "Hallo"},
	})
	require.NoError(t, err)
	assert.Empty(t, post.DirtyLocales())

	got, err := f.posts.ReadIn(ctx, post, "de", "content")
	require.NoError(t, err)
	assert.Nil(t, got, "de row exists with NULL content, so no fallback")

	handler := f.module.SetTranslationsHandler()
	require.NoError(t, handler.Execute(ctx, translationscmd.SetTranslationsCommand{
		Model:        "Post",
		RecordID:     post.ID,
		Translations: map[string]map[string]any{"de": {"content": "Inhalt"}},
	}))
	require.NoError(t, f.posts.Reload(ctx, post))
	got, err = f.posts.ReadIn(ctx, post, "de", "content")
	require.NoError(t, err)
	assert.Equal(t, "Inhalt", got)
	got, err = f.posts.ReadIn(ctx, post, "de", "subject")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", got)

	err = handler.Execute(ctx, translationscmd.SetTranslationsCommand{
		Model:        "Post",
		RecordID:     post.ID,
		Translations: map[string]map[string]any{"de": {"title": "x"}},
	})
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))

	unsaved := newPost(2)
	assert.True(t, errors.Is(f.posts.SetTranslations(ctx, unsaved, map[string]map[string]any{"en": {"subject": "x"}}), globalize.ErrRecordNotSaved))
}

func TestDeleteRemovesTranslationRows(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	post := newPost(1)
	require.NoError(t, f.posts.AssignLocale(ctx, post, "en", map[string]any{"subject": "Hello"}))
	require.NoError(t, f.posts.AssignLocale(ctx, post, "de", map[string]any{"subject": "Hallo"}))
	require.NoError(t, f.posts.Save(ctx, post))

	require.NoError(t, f.posts.Delete(ctx, post))
	assert.Equal(t, 0, countRows(t, f.db, post.ID, "en"))
	assert.Equal(t, 0, countRows(t, f.db, post.ID, "de"))

	_, err := f.posts.Find(ctx, post.ID)
	assert.True(t, errors.Is(err, globalize.ErrRecordNotFound))
}

func TestTranslatesIsIdempotentAndAttributesMerge(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	again, err := globalize.Translates[*Post](f.module, []string{"other"})
	require.NoError(t, err)
	assert.Same(t, f.posts, again)
	assert.Equal(t, []string{"subject", "content"}, again.TranslatedAttributeNames())
	assert.Equal(t, "post_translations", again.TranslationTableName())
	assert.True(t, f.module.Translatable(&Post{}))
	assert.Equal(t, []string{"Post"}, f.module.Models())

	post := newPost(42)
	require.NoError(t, f.posts.WriteIn(ctx, post, "en", "subject", "Hello"))
	require.NoError(t, f.posts.Save(ctx, post))

	attrs, err := f.posts.Attributes(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, int64(42), attrs["blog_id"])
	assert.Equal(t, "Hello", attrs["subject"])
	assert.Nil(t, attrs["content"])

	locales, err := f.posts.TranslatedLocales(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, locales)

	require.NoError(t, f.posts.WriteIn(ctx, post, "fr", "subject", "Salut"))
	locales, err = f.posts.TranslatedLocales(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "fr"}, locales)

	meta, err := f.posts.Meta(ctx, post, "de", "subject")
	require.NoError(t, err)
	assert.True(t, meta.FallbackUsed)
	assert.Equal(t, "en", meta.ResolvedLocale)
}

func TestCachedReadsStayDetached(t *testing.T) {
	ctx := context.Background()
	f := setup(t, func(cfg *globalize.Config) {
		cfg.Cache.Enabled = true
	})

	post := newPost(1)
	require.NoError(t, f.posts.Save(ctx, post))

	cached, err := f.posts.Find(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.BlogID)

	post.BlogID = 2
	require.NoError(t, f.posts.Save(ctx, post))

	fresh := &Post{ID: post.ID}
	require.NoError(t, f.posts.Reload(ctx, fresh))
	assert.Equal(t, int64(2), fresh.BlogID)

	// Translation state is never shared through the cache.
	require.NoError(t, f.posts.WriteIn(ctx, fresh, "en", "subject", "local"))
	again, err := f.posts.Find(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, again.DirtyLocales())

	all, err := f.posts.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestModuleSurface(t *testing.T) {
	ctx := context.Background()

	_, err := globalize.New(globalize.DefaultConfig(), nil)
	assert.Error(t, err)

	db := testsupport.NewBunDB(t)
	cfg := globalize.DefaultConfig()
	cfg.DefaultLocale = ""
	_, err = globalize.New(cfg, db)
	assert.True(t, errors.Is(err, globalize.ErrDefaultLocaleRequired))

	f := setup(t, func(cfg *globalize.Config) {
		cfg.DefaultLocale = "en"
		cfg.ParentFallbacks = true
	})
	assert.Equal(t, "en", f.module.DefaultLocale())
	assert.Equal(t, []string{"pt-br", "pt", "en"}, f.module.FallbackChain("pt_BR"))

	_, err = f.module.TranslationSetter("Comment")
	assert.True(t, errors.Is(err, globalize.ErrModelNotTranslatable))
	setter, err := f.module.TranslationSetter("Post")
	require.NoError(t, err)
	assert.NotNil(t, setter)

	code, err := globalize.Scoped(ctx, "fr_FR", func(ctx context.Context) (string, error) {
		return f.posts.Locale(ctx), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fr-fr", code)

	sql, err := f.posts.TranslationTableSQL(globalize.Fields{"subject": globalize.FieldText})
	require.NoError(t, err)
	assert.Contains(t, sql, "post_translations")

	_, err = f.posts.TranslationTableSQL(globalize.Fields{"title": globalize.FieldText})
	var missing *globalize.MissingTranslatedFieldError
	assert.True(t, errors.As(err, &missing))

	require.NoError(t, f.posts.DropTranslationTable(ctx))
	require.NoError(t, f.posts.CreateTranslationTable(ctx, nil))
}
