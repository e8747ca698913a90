package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/SebastianObert/AirCare/internal/aggregator"
	"github.com/SebastianObert/AirCare/internal/auth"
	"github.com/SebastianObert/AirCare/internal/heatmap"
	"github.com/SebastianObert/AirCare/internal/history"
	"github.com/SebastianObert/AirCare/internal/locations"
	"github.com/SebastianObert/AirCare/internal/notify"
	"github.com/SebastianObert/AirCare/models"
	"github.com/SebastianObert/AirCare/services/geocode"
)

var validate = validator.New()

const userIDKey = "userID"

// AuthService covers the account operations the HTTP layer needs.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (auth.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	VerifyToken(tokenStr string) (string, error)
}

type LocationStore interface {
	Add(ctx context.Context, loc locations.SavedLocation) (string, error)
	List(ctx context.Context, userID string) ([]locations.SavedLocation, error)
	Delete(ctx context.Context, userID, id string) error
}

type InboxReader interface {
	List(ctx context.Context, userID string) ([]notify.Notification, error)
}

type HeatmapSource interface {
	PointsInBounds(ctx context.Context, b heatmap.Bounds) ([]heatmap.DataPoint, error)
}

type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocode.Candidate, error)
}

// Deps bundles everything the route handlers call into.
type Deps struct {
	Auth      AuthService
	Sessions  *Sessions
	History   history.Store
	Locations LocationStore
	Inbox     InboxReader
	Heatmap   HeatmapSource
	Geocode   Geocoder
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Post("/auth/register", registerHandler(deps))
	v1.Post("/auth/login", loginHandler(deps))

	authed := v1.Group("", requireAuth(deps.Auth))

	authed.Put("/location", updateLocationHandler(deps))
	authed.Get("/snapshot", snapshotHandler(deps))

	authed.Post("/history", saveHistoryHandler(deps))
	authed.Get("/history", listHistoryHandler(deps))
	authed.Patch("/history/:id", editHistoryHandler(deps))
	authed.Delete("/history/:id", deleteHistoryHandler(deps))

	authed.Get("/locations", listLocationsHandler(deps))
	authed.Post("/locations", addLocationHandler(deps))
	authed.Delete("/locations/:id", deleteLocationHandler(deps))

	authed.Get("/inbox", inboxHandler(deps))

	v1.Get("/heatmap", heatmapHandler(deps))
	v1.Get("/geocode", geocodeHandler(deps))
}

// requireAuth resolves the bearer token into a user ID stored in locals.
func requireAuth(authSvc AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := authSvc.VerifyToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func registerHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		user, err := deps.Auth.Register(c.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				return fiber.NewError(fiber.StatusConflict, "email already registered")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to register user")
		}

		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func loginHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		token, err := deps.Auth.Login(c.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to log in")
		}

		return c.JSON(fiber.Map{"token": token})
	}
}

type updateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Label     string   `json:"label"`
}

func updateLocationHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord := models.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
		label := req.Label
		if label == "" {
			label = fmt.Sprintf("Lat: %v, Lon: %v", coord.Latitude, coord.Longitude)
		}

		agg := deps.Sessions.For(currentUserID(c))
		// The fetches outlive this request; the request context is recycled
		// by fasthttp once the handler returns.
		agg.Update(context.Background(), coord, label)

		if c.QueryBool("wait") {
			agg.Wait()
			return c.JSON(agg.View())
		}
		return c.Status(fiber.StatusAccepted).JSON(agg.View())
	}
}

func snapshotHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		agg := deps.Sessions.For(currentUserID(c))
		return c.JSON(agg.View())
	}
}

func saveHistoryHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		agg := deps.Sessions.For(currentUserID(c))
		agg.Save(c.Context())

		message, ok := agg.SaveStatus.Consume()
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "save produced no result")
		}

		saved := message == aggregator.SaveSuccessMessage
		status := fiber.StatusCreated
		if !saved {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{
			"saved":   saved,
			"message": message,
		})
	}
}

func listHistoryHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := deps.History.List(c.Context(), currentUserID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list history")
		}
		return c.JSON(entries)
	}
}

type editHistoryRequest struct {
	Note     *string `json:"note"`
	Category *string `json:"category"`
}

func editHistoryHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req editHistoryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if req.Note == nil && req.Category == nil {
			return fiber.NewError(fiber.StatusBadRequest, "nothing to update")
		}

		fields := map[string]interface{}{}
		if req.Note != nil {
			fields["note"] = *req.Note
		}
		if req.Category != nil {
			fields["category"] = *req.Category
		}

		err := deps.History.Update(c.Context(), currentUserID(c), c.Params("id"), fields)
		if err != nil {
			if errors.Is(err, history.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "history entry not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to update history entry")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func deleteHistoryHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.History.Delete(c.Context(), currentUserID(c), c.Params("id"))
		if err != nil {
			if errors.Is(err, history.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "history entry not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to delete history entry")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func listLocationsHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locs, err := deps.Locations.List(c.Context(), currentUserID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list saved locations")
		}
		return c.JSON(locs)
	}
}

type addLocationRequest struct {
	Name string   `json:"name" validate:"required,min=1,max=128"`
	Lat  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon  *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

func addLocationHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		id, err := deps.Locations.Add(c.Context(), locations.SavedLocation{
			UserID: currentUserID(c),
			Name:   req.Name,
			Lat:    *req.Lat,
			Lon:    *req.Lon,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save location")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	}
}

func deleteLocationHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.Locations.Delete(c.Context(), currentUserID(c), c.Params("id"))
		if err != nil {
			if errors.Is(err, locations.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "saved location not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to delete saved location")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func inboxHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		notifications, err := deps.Inbox.List(c.Context(), currentUserID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list notifications")
		}
		return c.JSON(notifications)
	}
}

func heatmapHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, err := parseBounds(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		points, err := deps.Heatmap.PointsInBounds(c.Context(), bounds)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load heatmap points")
		}
		return c.JSON(heatmap.Weight(points))
	}
}

func parseBounds(c *fiber.Ctx) (heatmap.Bounds, error) {
	var b heatmap.Bounds
	var err error

	parse := func(name string, dst *float64) {
		if err != nil {
			return
		}
		raw := c.Query(name)
		if raw == "" {
			err = fmt.Errorf("%s query parameter is required", name)
			return
		}
		*dst, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			err = fmt.Errorf("invalid %s: %v", name, err)
		}
	}

	parse("minLat", &b.MinLat)
	parse("minLon", &b.MinLon)
	parse("maxLat", &b.MaxLat)
	parse("maxLon", &b.MaxLon)
	if err != nil {
		return b, err
	}

	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return b, errors.New("min bounds must not exceed max bounds")
	}
	return b, nil
}

func geocodeHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		candidates, err := deps.Geocode.Search(c.Context(), query)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to search locations")
		}
		return c.JSON(candidates)
	}
}
