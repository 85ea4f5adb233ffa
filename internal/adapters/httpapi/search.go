package httpapi

import (
	"rental-project/internal/core/domain"
	"rental-project/internal/core/usecase"
	"rental-project/internal/presentation"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

// searchSessions keeps one engine per browsing client so load-more appends
// to the same result list.
type searchSessions struct {
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*searchSession
}

type searchSession struct {
	engine   *usecase.SearchEngine
	lastUsed time.Time
}

func newSearchSessions(idleTTL time.Duration) *searchSessions {
	return &searchSessions{
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*searchSession),
	}
}

func (s *searchSessions) add(engine *usecase.SearchEngine) string {
	now := s.now()
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, session := range s.sessions {
		if now.Sub(session.lastUsed) > s.idleTTL {
			delete(s.sessions, key)
		}
	}
	s.sessions[id] = &searchSession{engine: engine, lastUsed: now}
	return id
}

func (s *searchSessions) get(id string) (*usecase.SearchEngine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, errSearchNotFound
	}
	session.lastUsed = s.now()
	return session.engine, nil
}

func (s *searchSessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type searchInput struct {
	Location   string  `json:"location"`
	Guests     int     `json:"guests" validate:"min=0"`
	CategoryID *string `json:"category_id"`
}

// criteria is nil when nothing was entered, which lists every active listing.
func (in searchInput) criteria() *domain.SearchCriteria {
	location := strings.TrimSpace(in.Location)
	if location == "" && in.Guests == 0 {
		return nil
	}
	return &domain.SearchCriteria{Location: location, Guests: in.Guests}
}

func (in searchInput) category() *string {
	if in.CategoryID == nil || strings.TrimSpace(*in.CategoryID) == "" {
		return nil
	}
	c := strings.TrimSpace(*in.CategoryID)
	return &c
}

type searchResponse struct {
	ID             string                      `json:"id"`
	Criteria       *domain.SearchCriteria      `json:"criteria,omitempty"`
	ActiveCategory *string                     `json:"active_category,omitempty"`
	Listings       []*presentation.ListingCard `json:"listings"`
	PageCursor     int                         `json:"page_cursor"`
	HasMore        bool                        `json:"has_more"`
	IsLoading      bool                        `json:"is_loading"`
	State          domain.SearchState          `json:"state"`
	Error          string                      `json:"error,omitempty"`
}

func (s *Server) createSearch(ctx iris.Context) {
	var input searchInput
	if err := ctx.ReadJSON(&input); err != nil {
		s.writeBindError(ctx, err)
		return
	}

	engine, err := usecase.NewSearchEngine(s.deps.Gateway, s.deps.PageSize)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	id := s.searches.add(engine)

	err = engine.ApplyCriteria(ctx.Request().Context(), input.criteria(), input.category())
	if err == nil {
		ctx.StatusCode(iris.StatusCreated)
	}
	s.writeSearch(ctx, id, engine, err)
}

func (s *Server) getSearch(ctx iris.Context) {
	id := ctx.Params().Get("id")
	engine, err := s.searches.get(id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeSearch(ctx, id, engine, nil)
}

// replaceSearch swaps criteria and category wholesale and reloads page 0.
func (s *Server) replaceSearch(ctx iris.Context) {
	id := ctx.Params().Get("id")
	engine, err := s.searches.get(id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	var input searchInput
	if err := ctx.ReadJSON(&input); err != nil {
		s.writeBindError(ctx, err)
		return
	}

	err = engine.ApplyCriteria(ctx.Request().Context(), input.criteria(), input.category())
	s.writeSearch(ctx, id, engine, err)
}

func (s *Server) nextSearchPage(ctx iris.Context) {
	id := ctx.Params().Get("id")
	engine, err := s.searches.get(id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	err = engine.LoadNextPage(ctx.Request().Context())
	s.writeSearch(ctx, id, engine, err)
}

// writeSearch renders the engine snapshot. A failed fetch still returns
// what was loaded before, with a 502 and a retryable message.
func (s *Server) writeSearch(ctx iris.Context, id string, engine *usecase.SearchEngine, fetchErr error) {
	if fetchErr != nil && !domain.IsGatewayError(fetchErr) {
		s.writeError(ctx, fetchErr)
		return
	}

	loc := s.requestLocale(ctx)
	page := engine.Snapshot()
	resp := searchResponse{
		ID:             id,
		Criteria:       page.Criteria,
		ActiveCategory: page.ActiveCategory,
		Listings:       presentation.NewListingCards(page.Results, loc, s.deps.Strings),
		PageCursor:     page.PageCursor,
		HasMore:        page.HasMore,
		IsLoading:      page.IsLoading,
		State:          page.State,
	}
	if fetchErr != nil {
		ctx.StatusCode(iris.StatusBadGateway)
		resp.Error = s.deps.Strings.Lookup(loc, "load_failed")
	}
	ctx.JSON(resp)
}

func (s *Server) listCategories(ctx iris.Context) {
	categories, err := s.deps.Curation.Categories(ctx.Request().Context())
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	loc := s.requestLocale(ctx)
	out := make([]iris.Map, 0, len(categories))
	for _, c := range categories {
		out = append(out, iris.Map{
			"id":    c.ID,
			"slug":  c.Slug,
			"icon":  c.Icon,
			"label": loc.Pick(c.Name, c.NameBn),
		})
	}
	ctx.JSON(iris.Map{"categories": out})
}
