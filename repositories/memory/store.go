// Package memory holds map-backed repositories with the same semantics as the
// gorm ones, including the optimistic version check. Used by tests and local runs
// without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"KinderTube/models"
	"KinderTube/repositories"
)

type Store struct {
	mu       sync.Mutex
	nextID   uint
	parents  map[uint]models.Parent
	children map[uint]models.ChildProfile
	videos   map[uint]models.Video
	likes    map[[2]uint]bool
	comments []models.VideoComment
}

func NewStore() *Store {
	return &Store{
		parents:  make(map[uint]models.Parent),
		children: make(map[uint]models.ChildProfile),
		videos:   make(map[uint]models.Video),
		likes:    make(map[[2]uint]bool),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Parents() repositories.ParentRepository   { return parentRepo{s} }
func (s *Store) Children() repositories.ChildRepository   { return childRepo{s} }
func (s *Store) Videos() repositories.VideoRepository     { return videoRepo{s} }
func (s *Store) Comments() repositories.CommentRepository { return commentRepo{s} }

func cloneChild(c models.ChildProfile) models.ChildProfile {
	c.Requests = append([]models.VideoRequest(nil), c.Requests...)
	for i := range c.Requests {
		req := &c.Requests[i]
		if req.ParentResponse != nil {
			v := *req.ParentResponse
			req.ParentResponse = &v
		}
		if req.RespondedAt != nil {
			v := *req.RespondedAt
			req.RespondedAt = &v
		}
		if req.RespondedBy != nil {
			v := *req.RespondedBy
			req.RespondedBy = &v
		}
	}
	c.SearchHistory = append([]models.SearchEntry(nil), c.SearchHistory...)
	c.WatchHistory = append([]models.WatchEntry(nil), c.WatchHistory...)
	return c
}

type parentRepo struct{ s *Store }

func (r parentRepo) Create(_ context.Context, parent *models.Parent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.parents {
		if p.Email == parent.Email || p.Username == parent.Username {
			return repositories.ErrDuplicate
		}
	}
	parent.ID = r.s.id()
	parent.CreatedAt = time.Now()
	parent.UpdatedAt = parent.CreatedAt
	if parent.Role == "" {
		parent.Role = models.RoleParent
	}
	r.s.parents[parent.ID] = *parent
	return nil
}

func (r parentRepo) FindByID(_ context.Context, id uint) (models.Parent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parents[id]
	if !ok {
		return models.Parent{}, repositories.ErrNotFound
	}
	return p, nil
}

func (r parentRepo) FindByEmail(_ context.Context, email string) (models.Parent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.parents {
		if p.Email == email {
			return p, nil
		}
	}
	return models.Parent{}, repositories.ErrNotFound
}

func (r parentRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.parents {
		if p.Email == email || p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r parentRepo) Save(_ context.Context, parent *models.Parent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.parents[parent.ID]; !ok {
		return repositories.ErrNotFound
	}
	for id, p := range r.s.parents {
		if id != parent.ID && (p.Email == parent.Email || p.Username == parent.Username) {
			return repositories.ErrDuplicate
		}
	}
	parent.UpdatedAt = time.Now()
	r.s.parents[parent.ID] = *parent
	return nil
}

func (r parentRepo) List(_ context.Context, filter models.ParentFilter) ([]models.Parent, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []models.Parent
	for _, p := range r.s.parents {
		if search == "" || strings.Contains(strings.ToLower(p.Username+" "+p.Email+" "+p.FirstName+" "+p.LastName), search) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	return page(matched, filter.Page, filter.Limit), total, nil
}

type childRepo struct{ s *Store }

func (r childRepo) Create(_ context.Context, child *models.ChildProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	child.ID = r.s.id()
	child.Version = 1
	child.CreatedAt = time.Now()
	child.UpdatedAt = child.CreatedAt
	r.s.children[child.ID] = cloneChild(*child)
	return nil
}

func (r childRepo) FindByID(_ context.Context, id uint) (models.ChildProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.children[id]
	if !ok {
		return models.ChildProfile{}, repositories.ErrNotFound
	}
	return cloneChild(c), nil
}

func (r childRepo) ListActiveByParent(_ context.Context, parentID uint) ([]models.ChildProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var children []models.ChildProfile
	for _, c := range r.s.children {
		if c.ParentID == parentID && c.IsActive {
			children = append(children, cloneChild(c))
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	return children, nil
}

func (r childRepo) CountActiveByParent(ctx context.Context, parentID uint) (int64, error) {
	children, err := r.ListActiveByParent(ctx, parentID)
	return int64(len(children)), err
}

func (r childRepo) Save(_ context.Context, child *models.ChildProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.children[child.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if stored.Version != child.Version {
		return repositories.ErrVersionConflict
	}
	seen := make(map[uint]bool, len(child.Requests))
	for _, req := range child.Requests {
		if seen[req.VideoID] {
			return repositories.ErrDuplicate
		}
		seen[req.VideoID] = true
	}
	child.Version++
	child.UpdatedAt = time.Now()
	r.s.children[child.ID] = cloneChild(*child)
	return nil
}

type videoRepo struct{ s *Store }

func (r videoRepo) Create(_ context.Context, video *models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	video.ID = r.s.id()
	video.CreatedAt = time.Now()
	video.UpdatedAt = video.CreatedAt
	r.s.videos[video.ID] = *video
	return nil
}

func (r videoRepo) FindByID(_ context.Context, id uint) (models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return v, nil
}

func (r videoRepo) FindByIDs(_ context.Context, ids []uint) ([]models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var videos []models.Video
	for _, id := range ids {
		if v, ok := r.s.videos[id]; ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

func (r videoRepo) ListPublic(_ context.Context, filter models.VideoFilter) ([]models.Video, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []models.Video
	for _, v := range r.s.videos {
		if !v.InPublicFeed() {
			continue
		}
		if filter.Category != "" && v.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(v.Title+" "+v.Description), search) {
			continue
		}
		matched = append(matched, v)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	return page(matched, filter.Page, filter.Limit), total, nil
}

func (r videoRepo) ListByUploader(_ context.Context, uploaderID uint) ([]models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var videos []models.Video
	for _, v := range r.s.videos {
		if v.UploaderID == uploaderID && v.IsActive {
			videos = append(videos, v)
		}
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].ID > videos[j].ID })
	return videos, nil
}

func (r videoRepo) Save(_ context.Context, video *models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	video.UpdatedAt = time.Now()
	r.s.videos[video.ID] = *video
	return nil
}

func (r videoRepo) IncrementViews(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	v.Views++
	r.s.videos[id] = v
	return nil
}

func (r videoRepo) ToggleLike(_ context.Context, videoID, parentID uint) (bool, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.videos[videoID]
	if !ok {
		return false, 0, repositories.ErrNotFound
	}
	key := [2]uint{videoID, parentID}
	liked := !r.s.likes[key]
	if liked {
		r.s.likes[key] = true
		v.LikesCount++
	} else {
		delete(r.s.likes, key)
		if v.LikesCount > 0 {
			v.LikesCount--
		}
	}
	r.s.videos[videoID] = v
	return liked, v.LikesCount, nil
}

func (r videoRepo) StatsByUploader(_ context.Context, uploaderID uint) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count, views int64
	for _, v := range r.s.videos {
		if v.UploaderID == uploaderID && v.IsActive {
			count++
			views += v.Views
		}
	}
	return count, views, nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *models.VideoComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.videos[comment.VideoID]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.ID = r.s.id()
	comment.CreatedAt = time.Now()
	r.s.comments = append(r.s.comments, *comment)
	v.CommentsCount++
	r.s.videos[v.ID] = v
	return nil
}

func (r commentRepo) ListByVideo(_ context.Context, videoID uint, limit, offset int) ([]models.VideoComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var comments []models.VideoComment
	for i := len(r.s.comments) - 1; i >= 0; i-- {
		if r.s.comments[i].VideoID == videoID {
			comments = append(comments, r.s.comments[i])
		}
	}
	if offset > len(comments) {
		return nil, nil
	}
	comments = comments[offset:]
	if limit > 0 && len(comments) > limit {
		comments = comments[:limit]
	}
	return comments, nil
}

func page[T any](items []T, pageNum, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (pageNum - 1) * limit
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
