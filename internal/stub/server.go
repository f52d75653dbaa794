// Package stub serves an in-memory Connecting Party Manager API. It answers
// the same routes, status codes and bodies as the real API closely enough
// to drive every flow end to end without network access.
package stub

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nhsdigital/cpmflow/internal/cpm"
	"github.com/nhsdigital/cpmflow/internal/logger"
)

// Error codes used in error bodies.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "RESOURCE_NOT_FOUND"
	CodeUnauthorized = "ACCESS_DENIED"
	CodeDeleted      = "RESOURCE_DELETED"
)

// Options configures a Server.
type Options struct {
	// Now stamps created_on. Defaults to time.Now.
	Now func() time.Time
	// NewID generates record ids. Defaults to uuid.NewString.
	NewID func() string
}

// Server is the stub API.
type Server struct {
	echo  *echo.Echo
	store *store
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Errors []apiError `json:"errors"`
}

// New creates a stub with an empty store.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = defaultID
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware)
	e.Use(requireAPIKey)

	s := &Server{echo: e, store: newStore(opts.Now, opts.NewID)}
	s.registerRoutes()
	return s
}

// Handler exposes the stub as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	logger.Info("stub: listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.POST("/ProductTeam", s.createTeam)
	e.GET("/ProductTeam/:team", s.readTeam)
	e.DELETE("/ProductTeam/:team", s.deleteTeam)
	e.POST("/ProductTeam/:team/Product", s.createProduct)
	e.DELETE("/ProductTeam/:team/Product/:product", s.deleteProduct)
	e.GET("/Product", s.searchProducts)
	e.GET("/Product/:product", s.readProduct)
}

// correlationMiddleware echoes the caller's correlation id and tags the response
// with a request id.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if id := req.Header.Get("X-Correlation-ID"); id != "" {
			c.Response().Header().Set("X-Correlation-ID", id)
		}
		requestID := req.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = defaultID()
		}
		c.Response().Header().Set("X-Request-ID", requestID)
		logger.Debug("stub: %s %s correlation=%s", req.Method, req.URL.RequestURI(), req.Header.Get("X-Correlation-ID"))
		return next(c)
	}
}

func requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if strings.TrimSpace(c.Request().Header.Get("apikey")) == "" {
			return fail(c, http.StatusUnauthorized, CodeUnauthorized, "missing apikey header")
		}
		return next(c)
	}
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, errorBody{Errors: []apiError{{Code: code, Message: message}}})
}

func notFound(c echo.Context, kind, id string) error {
	return fail(c, http.StatusNotFound, CodeNotFound, "Could not find "+kind+" for key ('"+id+"')")
}

func (s *Server) createTeam(c echo.Context) error {
	var in cpm.TeamInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, CodeValidation, "malformed body")
	}
	if !odsCode.MatchString(strings.TrimSpace(in.ODSCode)) {
		return fail(c, http.StatusBadRequest, CodeValidation, "bad ods_code")
	}
	if strings.TrimSpace(in.Name) == "" {
		return fail(c, http.StatusBadRequest, CodeValidation, "missing name")
	}
	return c.JSON(http.StatusCreated, s.store.createTeam(in))
}

func (s *Server) readTeam(c echo.Context) error {
	id := c.Param("team")
	team, ok := s.store.team(id)
	if !ok {
		return notFound(c, "ProductTeam", id)
	}
	return c.JSON(http.StatusOK, team)
}

func (s *Server) deleteTeam(c echo.Context) error {
	id := c.Param("team")
	if !s.store.deleteTeam(id) {
		return notFound(c, "ProductTeam", id)
	}
	return c.JSON(http.StatusOK, cpm.DeleteResult{Code: CodeDeleted, Message: id + " has been deleted."})
}

func (s *Server) createProduct(c echo.Context) error {
	teamID := c.Param("team")
	var in cpm.ProductInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, CodeValidation, "malformed body")
	}
	if strings.TrimSpace(in.Name) == "" {
		return fail(c, http.StatusBadRequest, CodeValidation, "missing name")
	}
	product, ok := s.store.createProduct(teamID, in)
	if !ok {
		return notFound(c, "ProductTeam", teamID)
	}
	return c.JSON(http.StatusCreated, product)
}

func (s *Server) deleteProduct(c echo.Context) error {
	teamID, productID := c.Param("team"), c.Param("product")
	if !s.store.deleteProduct(teamID, productID) {
		return notFound(c, "Product", productID)
	}
	return c.JSON(http.StatusOK, cpm.DeleteResult{Code: CodeDeleted, Message: productID + " has been deleted."})
}

func (s *Server) readProduct(c echo.Context) error {
	id := c.Param("product")
	p, ok := s.store.product(id)
	if !ok {
		return notFound(c, "Product", id)
	}
	return c.JSON(http.StatusOK, cpm.ProductRead{
		ID:               p.ID,
		CPMProductTeamID: p.ProductTeamID,
		Name:             p.Name,
		ODSCode:          p.ODSCode,
		Status:           p.Status,
		CreatedOn:        p.CreatedOn,
		UpdatedOn:        p.UpdatedOn,
		DeletedOn:        p.DeletedOn,
		Keys:             p.Keys,
	})
}

func (s *Server) searchProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.search(cpm.SearchQuery{
		OrganisationCode: c.QueryParam("organisation_code"),
		ProductTeamID:    c.QueryParam("product_team_id"),
	}))
}
