package stub

import (
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhsdigital/cpmflow/internal/cpm"
)

// odsCode matches an ODS organisation code.
var odsCode = regexp.MustCompile(`^[A-Za-z0-9]{3,10}$`)

// store holds product teams and products in insertion order.
type store struct {
	mu       sync.Mutex
	teams    []*cpm.ProductTeam
	products []*cpm.Product
	now      func() time.Time
	newID    func() string
}

func newStore(now func() time.Time, newID func() string) *store {
	return &store{now: now, newID: newID}
}

func (s *store) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000000+00:00")
}

// productID derives an id shaped like P.XXX-YYY from the tail of a new id.
func (s *store) productID() string {
	raw := "000000" + strings.ToUpper(strings.ReplaceAll(s.newID(), "-", ""))
	tail := raw[len(raw)-6:]
	return "P." + tail[:3] + "-" + tail[3:]
}

func (s *store) createTeam(in cpm.TeamInput) cpm.ProductTeam {
	s.mu.Lock()
	defer s.mu.Unlock()

	team := &cpm.ProductTeam{
		ID:        s.newID(),
		Name:      in.Name,
		ODSCode:   in.ODSCode,
		Status:    "active",
		CreatedOn: s.timestamp(),
		Keys:      []any{},
	}
	s.teams = append(s.teams, team)
	return *team
}

func (s *store) team(id string) (cpm.ProductTeam, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.teamIndex(id); i >= 0 {
		return *s.teams[i], true
	}
	return cpm.ProductTeam{}, false
}

func (s *store) teamIndex(id string) int {
	return slices.IndexFunc(s.teams, func(t *cpm.ProductTeam) bool { return t.ID == id })
}

func (s *store) deleteTeam(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.teamIndex(id)
	if i < 0 {
		return false
	}
	s.teams = slices.Delete(s.teams, i, i+1)
	s.products = slices.DeleteFunc(s.products, func(p *cpm.Product) bool { return p.ProductTeamID == id })
	return true
}

func (s *store) createProduct(teamID string, in cpm.ProductInput) (cpm.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.teamIndex(teamID)
	if i < 0 {
		return cpm.Product{}, false
	}
	product := &cpm.Product{
		ID:            s.productID(),
		ProductTeamID: teamID,
		Name:          in.Name,
		ODSCode:       s.teams[i].ODSCode,
		Status:        "active",
		CreatedOn:     s.timestamp(),
		Keys:          []any{},
	}
	s.products = append(s.products, product)
	return *product, true
}

func (s *store) productIndex(id string) int {
	return slices.IndexFunc(s.products, func(p *cpm.Product) bool { return p.ID == id })
}

func (s *store) product(id string) (cpm.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.productIndex(id); i >= 0 {
		return *s.products[i], true
	}
	return cpm.Product{}, false
}

func (s *store) deleteProduct(teamID, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(productID)
	if i < 0 || s.products[i].ProductTeamID != teamID {
		return false
	}
	s.products = slices.Delete(s.products, i, i+1)
	return true
}

// search groups matching products by organisation then team. Empty filters
// match everything.
func (s *store) search(q cpm.SearchQuery) cpm.SearchResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := cpm.SearchResponse{Results: []cpm.SearchResult{}}
	for _, p := range s.products {
		if q.OrganisationCode != "" && !strings.EqualFold(p.ODSCode, q.OrganisationCode) {
			continue
		}
		if q.ProductTeamID != "" && p.ProductTeamID != q.ProductTeamID {
			continue
		}

		r := slices.IndexFunc(resp.Results, func(r cpm.SearchResult) bool { return r.OrgCode == p.ODSCode })
		if r < 0 {
			resp.Results = append(resp.Results, cpm.SearchResult{OrgCode: p.ODSCode})
			r = len(resp.Results) - 1
		}
		teams := resp.Results[r].ProductTeams
		t := slices.IndexFunc(teams, func(t cpm.SearchTeam) bool { return t.ProductTeamID == p.ProductTeamID })
		if t < 0 {
			teams = append(teams, cpm.SearchTeam{ProductTeamID: p.ProductTeamID})
			t = len(teams) - 1
		}
		teams[t].Products = append(teams[t].Products, *p)
		resp.Results[r].ProductTeams = teams
	}
	return resp
}

func defaultID() string { return uuid.NewString() }
