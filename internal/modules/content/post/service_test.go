package post

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/modules/content/hydrate"
	"github.com/inkwell-cms/core/internal/pkg/errs"
	"github.com/inkwell-cms/core/internal/pkg/pagination"
	"github.com/inkwell-cms/core/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePostRepo struct {
	mu         sync.Mutex
	posts      []*models.PostModel
	countCalls int
	findCalls  int
	lastUpdate map[string]interface{}
	lastUpdID  string
}

func (f *fakePostRepo) matches(p *models.PostModel, fl repository.PostFilter) bool {
	if p.IsDeleted {
		return false
	}
	if fl.Status != "" && p.Status != fl.Status {
		return false
	}
	if fl.AuthorID != "" && p.AuthorID != fl.AuthorID {
		return false
	}
	if fl.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != fl.CategoryID) {
		return false
	}
	if fl.TagID != "" {
		found := false
		for _, id := range p.TagIDs {
			if id == fl.TagID {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if fl.Query != "" && !strings.Contains(p.Title, fl.Query) && !strings.Contains(p.Content, fl.Query) {
		return false
	}
	return true
}

func (f *fakePostRepo) Count(ctx context.Context, fl repository.PostFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	var n int64
	for _, p := range f.posts {
		if f.matches(p, fl) {
			n++
		}
	}
	return n, nil
}

func (f *fakePostRepo) Find(ctx context.Context, fl repository.PostFilter, offset, limit int) ([]models.PostModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	var all []models.PostModel
	for _, p := range f.posts {
		if f.matches(p, fl) {
			all = append(all, *p)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakePostRepo) FindBySlug(ctx context.Context, slug string) (*models.PostModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePostRepo) Insert(ctx context.Context, post *models.PostModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post.ID == "" {
		post.ID = "generated-id"
	}
	cp := *post
	f.posts = append(f.posts, &cp)
	return nil
}

func (f *fakePostRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdID = id
	f.lastUpdate = fields
	for _, p := range f.posts {
		if p.ID == id {
			if v, ok := fields["is_deleted"].(bool); ok {
				p.IsDeleted = v
			}
		}
	}
	return nil
}

func (f *fakePostRepo) IncrementViewCount(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.ID == id {
			p.ViewCount++
		}
	}
	return nil
}

func (f *fakePostRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return f.Count(ctx, repository.PostFilter{CategoryID: categoryID})
}

func (f *fakePostRepo) CountsByCategory(ctx context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int64{}
	for _, p := range f.posts {
		if !p.IsDeleted && p.CategoryID != nil {
			out[*p.CategoryID]++
		}
	}
	return out, nil
}

func (f *fakePostRepo) Suggest(ctx context.Context, query string, limit int) ([]models.PostModel, error) {
	return nil, nil
}

type fakeCategoryRepo struct {
	cats map[string]*models.CategoryModel // keyed by slug
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]models.CategoryModel, error) {
	var out []models.CategoryModel
	for _, c := range f.cats {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*models.CategoryModel, error) {
	for _, c := range f.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) GetByIDs(ctx context.Context, ids []string) ([]models.CategoryModel, error) {
	var out []models.CategoryModel
	for _, id := range ids {
		if c, _ := f.GetByID(ctx, id); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.CategoryModel, error) {
	if c, ok := f.cats[slug]; ok {
		return c, nil
	}
	return nil, nil
}

func (f *fakeCategoryRepo) ExistsName(ctx context.Context, name, excludeID string) (bool, error) {
	return false, nil
}

func (f *fakeCategoryRepo) Insert(ctx context.Context, cat *models.CategoryModel) error { return nil }
func (f *fakeCategoryRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return nil
}
func (f *fakeCategoryRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeTagRepo struct {
	tags map[string]*models.TagModel // keyed by slug
}

func (f *fakeTagRepo) List(ctx context.Context) ([]models.TagModel, error) { return nil, nil }

func (f *fakeTagRepo) GetByIDs(ctx context.Context, ids []string) ([]models.TagModel, error) {
	var out []models.TagModel
	for _, id := range ids {
		for _, t := range f.tags {
			if t.ID == id {
				out = append(out, *t)
			}
		}
	}
	return out, nil
}

func (f *fakeTagRepo) GetBySlug(ctx context.Context, slug string) (*models.TagModel, error) {
	if t, ok := f.tags[slug]; ok {
		return t, nil
	}
	return nil, nil
}

func (f *fakeTagRepo) ExistsName(ctx context.Context, name string) (bool, error) { return false, nil }
func (f *fakeTagRepo) Insert(ctx context.Context, tag *models.TagModel) error    { return nil }
func (f *fakeTagRepo) Delete(ctx context.Context, id string) error               { return nil }

type fakeUserSource struct {
	users map[string]models.UserModel
}

func (f *fakeUserSource) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserSource) GetByIDs(ctx context.Context, ids []string) ([]models.UserModel, error) {
	var out []models.UserModel
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakePostRepo, *fakeCategoryRepo) {
	posts := &fakePostRepo{}
	categories := &fakeCategoryRepo{cats: map[string]*models.CategoryModel{
		"go": {Base: models.Base{ID: "cat-1"}, Name: "Go", Slug: "go"},
	}}
	tags := &fakeTagRepo{tags: map[string]*models.TagModel{
		"testing": {Base: models.Base{ID: "tag-1"}, Name: "testing", Slug: "testing"},
	}}
	users := &fakeUserSource{users: map[string]models.UserModel{
		"author-1": {Base: models.Base{ID: "author-1"}, Username: "alice"},
		"author-2": {Base: models.Base{ID: "author-2"}, Username: "bob"},
	}}
	hydrator := hydrate.New(users, categories, tags)
	svc := NewService(posts, categories, tags, hydrator, zap.NewNop())
	return svc, posts, categories
}

func seedPost(repo *fakePostRepo, id, title, authorID, status string) *models.PostModel {
	p := &models.PostModel{
		Base:     models.Base{ID: id},
		Title:    title,
		Slug:     title + "-abc123",
		Content:  "content of " + title,
		AuthorID: authorID,
		Status:   status,
	}
	repo.posts = append(repo.posts, p)
	return p
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown category slug short-circuits", func(t *testing.T) {
		svc, posts, _ := newTestService()
		seedPost(posts, "p1", "one", "author-1", models.StatusPublished)

		items, pag, err := svc.List(ctx, ListQuery{Category: "no-such"}, pagination.Query{Page: 1, Size: 10})
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, int64(0), pag.Total)
		assert.Equal(t, 0, pag.TotalPages)
		assert.Zero(t, posts.countCalls, "posts table untouched")
		assert.Zero(t, posts.findCalls)
	})

	t.Run("unknown tag slug short-circuits", func(t *testing.T) {
		svc, posts, _ := newTestService()
		_, pag, err := svc.List(ctx, ListQuery{Tag: "nope"}, pagination.Query{Page: 1, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(0), pag.Total)
		assert.Zero(t, posts.findCalls)
	})

	t.Run("pages and totals", func(t *testing.T) {
		svc, posts, _ := newTestService()
		for i := 0; i < 23; i++ {
			seedPost(posts, "p"+string(rune('a'+i)), "title", "author-1", models.StatusPublished)
		}

		items, pag, err := svc.List(ctx, ListQuery{Status: models.StatusPublished}, pagination.Query{Page: 3, Size: 10})
		require.NoError(t, err)
		assert.Len(t, items, 3)
		assert.Equal(t, int64(23), pag.Total)
		assert.Equal(t, 3, pag.TotalPages)
	})

	t.Run("status filter applies", func(t *testing.T) {
		svc, posts, _ := newTestService()
		seedPost(posts, "p1", "pub", "author-1", models.StatusPublished)
		seedPost(posts, "p2", "draft", "author-1", models.StatusDraft)

		items, pag, err := svc.List(ctx, ListQuery{Status: models.StatusPublished}, pagination.Query{Page: 1, Size: 10})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int64(1), pag.Total)
		assert.Equal(t, "p1", items[0].ID)
	})

	t.Run("status defaults to published", func(t *testing.T) {
		svc, posts, _ := newTestService()
		seedPost(posts, "p1", "pub", "author-1", models.StatusPublished)
		seedPost(posts, "p2", "draft", "author-2", models.StatusDraft)

		items, pag, err := svc.List(ctx, ListQuery{}, pagination.Query{Page: 1, Size: 10})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int64(1), pag.Total)
		assert.Equal(t, "p1", items[0].ID, "no draft leaks without an explicit status")
	})

	t.Run("drafts require an explicit status filter", func(t *testing.T) {
		svc, posts, _ := newTestService()
		seedPost(posts, "p1", "pub", "author-1", models.StatusPublished)
		seedPost(posts, "p2", "draft", "author-1", models.StatusDraft)

		items, _, err := svc.List(ctx, ListQuery{Status: models.StatusDraft}, pagination.Query{Page: 1, Size: 10})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "p2", items[0].ID)
	})

	t.Run("list items carry no content", func(t *testing.T) {
		svc, posts, _ := newTestService()
		seedPost(posts, "p1", "pub", "author-1", models.StatusPublished)

		items, _, err := svc.List(ctx, ListQuery{}, pagination.Query{Page: 1, Size: 10})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Empty(t, items[0].Content)
		assert.Equal(t, "alice", items[0].Author.Username)
	})
}

func TestGetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("returns full content and counts the view", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "hello", "author-1", models.StatusPublished)

		out, err := svc.GetBySlug(ctx, p.Slug, nil)
		require.NoError(t, err)
		assert.Equal(t, "content of hello", out.Content)
		assert.Equal(t, int64(1), out.ViewCount)
	})

	t.Run("concurrent views are all recorded", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "hot", "author-1", models.StatusPublished)

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.GetBySlug(ctx, p.Slug, nil)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stored, err := posts.FindBySlug(ctx, p.Slug)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.ViewCount)
	})

	t.Run("draft hidden from anonymous", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "wip", "author-1", models.StatusDraft)

		_, err := svc.GetBySlug(ctx, p.Slug, nil)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("draft visible to its author", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "wip", "author-1", models.StatusDraft)

		out, err := svc.GetBySlug(ctx, p.Slug, &Actor{ID: "author-1", Role: models.RoleAuthor})
		require.NoError(t, err)
		assert.Equal(t, "p1", out.ID)
	})

	t.Run("draft visible to an admin", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "wip", "author-1", models.StatusDraft)

		out, err := svc.GetBySlug(ctx, p.Slug, &Actor{ID: "admin-1", Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, "p1", out.ID)
	})

	t.Run("draft hidden from other authors", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "wip", "author-1", models.StatusDraft)

		_, err := svc.GetBySlug(ctx, p.Slug, &Actor{ID: "author-2", Role: models.RoleAuthor})
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("missing slug", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.GetBySlug(ctx, "nothing", nil)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	actor := Actor{ID: "author-1", Role: models.RoleAuthor}

	t.Run("published post gets slug, author and timestamp", func(t *testing.T) {
		svc, _, _ := newTestService()
		out, err := svc.Create(ctx, actor, CreateRequest{
			Title:   "My First Post",
			Content: "hello",
			Status:  models.StatusPublished,
		})
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^my-first-post-[a-z0-9]{6}$`), out.Slug)
		assert.Equal(t, "alice", out.Author.Username)
		assert.NotNil(t, out.PublishedAt)
	})

	t.Run("defaults to draft without published_at", func(t *testing.T) {
		svc, _, _ := newTestService()
		out, err := svc.Create(ctx, actor, CreateRequest{Title: "Draft", Content: "x"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, out.Status)
		assert.Nil(t, out.PublishedAt)
	})

	t.Run("duplicate tag ids collapse", func(t *testing.T) {
		svc, posts, _ := newTestService()
		_, err := svc.Create(ctx, actor, CreateRequest{
			Title:   "Tagged",
			Content: "x",
			TagIDs:  []string{"tag-1", "tag-1"},
		})
		require.NoError(t, err)
		require.Len(t, posts.posts, 1)
		assert.Len(t, posts.posts[0].TagIDs, 1)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("author can patch own post by slug", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "old", "author-1", models.StatusDraft)

		content := "new body"
		out, err := svc.Update(ctx, Actor{ID: "author-1", Role: models.RoleAuthor}, p.Slug, UpdateRequest{Content: &content})
		require.NoError(t, err)
		assert.Equal(t, "new body", out.Content)
		assert.Equal(t, "new body", posts.lastUpdate["content"])
		assert.Contains(t, posts.lastUpdate, "updated_at")
	})

	t.Run("other author is rejected", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "old", "author-1", models.StatusDraft)

		title := "hijack"
		_, err := svc.Update(ctx, Actor{ID: "author-2", Role: models.RoleAuthor}, p.Slug, UpdateRequest{Title: &title})
		assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	})

	t.Run("admin can patch anyone", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "old", "author-1", models.StatusDraft)

		title := "fixed"
		out, err := svc.Update(ctx, Actor{ID: "admin-1", Role: models.RoleAdmin}, p.Slug, UpdateRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "fixed", out.Title)
	})

	t.Run("title change regenerates slug", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "old", "author-1", models.StatusDraft)

		title := "Brand New Title"
		out, err := svc.Update(ctx, Actor{ID: "author-1", Role: models.RoleAuthor}, p.Slug, UpdateRequest{Title: &title})
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^brand-new-title-[a-z0-9]{6}$`), out.Slug)
		assert.Equal(t, out.Slug, posts.lastUpdate["slug"])
	})

	t.Run("explicit null clears the category", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "old", "author-1", models.StatusDraft)
		catID := "cat-1"
		for _, stored := range posts.posts {
			stored.CategoryID = &catID
		}

		var req UpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"category_id": null}`), &req))
		require.True(t, req.CategoryID.Set)

		_, err := svc.Update(ctx, Actor{ID: "author-1", Role: models.RoleAuthor}, p.Slug, req)
		require.NoError(t, err)
		v, ok := posts.lastUpdate["category_id"]
		require.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("absent category field leaves it unchanged", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "old", "author-1", models.StatusDraft)

		var req UpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"content": "x"}`), &req))
		require.False(t, req.CategoryID.Set)

		_, err := svc.Update(ctx, Actor{ID: "author-1", Role: models.RoleAuthor}, p.Slug, req)
		require.NoError(t, err)
		assert.NotContains(t, posts.lastUpdate, "category_id")
	})

	t.Run("publishing stamps published_at exactly once", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "old", "author-1", models.StatusDraft)
		actor := Actor{ID: "author-1", Role: models.RoleAuthor}

		published := models.StatusPublished
		out, err := svc.Update(ctx, actor, p.Slug, UpdateRequest{Status: &published})
		require.NoError(t, err)
		require.NotNil(t, out.PublishedAt)
		first := *out.PublishedAt
		assert.Contains(t, posts.lastUpdate, "published_at")

		// republish after unpublishing keeps the original timestamp
		for _, stored := range posts.posts {
			if stored.ID == "p1" {
				stored.Status = models.StatusDraft
				stored.PublishedAt = &first
			}
		}
		out, err = svc.Update(ctx, actor, p.Slug, UpdateRequest{Status: &published})
		require.NoError(t, err)
		assert.NotContains(t, posts.lastUpdate, "published_at")
		assert.Equal(t, first, *out.PublishedAt)
	})

	t.Run("empty patch issues no update", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "old", "author-1", models.StatusDraft)

		_, err := svc.Update(ctx, Actor{ID: "author-1", Role: models.RoleAuthor}, p.Slug, UpdateRequest{})
		require.NoError(t, err)
		assert.Empty(t, posts.lastUpdID)
	})

	t.Run("unknown slug", func(t *testing.T) {
		svc, _, _ := newTestService()
		title := "x"
		_, err := svc.Update(ctx, Actor{ID: "author-1", Role: models.RoleAuthor}, "ghost", UpdateRequest{Title: &title})
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("soft delete by slug hides the post", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "bye", "author-1", models.StatusPublished)

		require.NoError(t, svc.Delete(ctx, Actor{ID: "author-1", Role: models.RoleAuthor}, p.Slug))
		assert.Equal(t, true, posts.lastUpdate["is_deleted"])
		assert.Contains(t, posts.lastUpdate, "updated_at")

		_, err := svc.GetBySlug(ctx, p.Slug, &Actor{ID: "author-1", Role: models.RoleAuthor})
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("other author is rejected", func(t *testing.T) {
		svc, posts, _ := newTestService()
		p := seedPost(posts, "p1", "bye", "author-1", models.StatusPublished)

		err := svc.Delete(ctx, Actor{ID: "author-2", Role: models.RoleAuthor}, p.Slug)
		assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	})
}

func TestCanMutate(t *testing.T) {
	post := &models.PostModel{AuthorID: "author-1"}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owner", Actor{ID: "author-1", Role: models.RoleAuthor}, true},
		{"admin", Actor{ID: "someone", Role: models.RoleAdmin}, true},
		{"other author", Actor{ID: "author-2", Role: models.RoleAuthor}, false},
		{"visitor", Actor{ID: "", Role: models.RoleVisitor}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canMutate(tt.actor, post))
		})
	}
}
