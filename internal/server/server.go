package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Scrimzay/npcbattle/internal/sink"
	"github.com/Scrimzay/npcbattle/internal/world"
)

// KillLedger is the read side of the kill ledger.
type KillLedger interface {
	Recent(limit int) ([]sink.Kill, error)
}

type Deps struct {
	Registry   *world.Registry
	Factory    *world.Factory
	Hub        *Hub
	Ledger     KillLedger // nil when the ledger is disabled
	RosterPath string
	Log        *zap.Logger
}

type CreateRequest struct {
	Kind string `json:"kind" binding:"required"`
	Name string `json:"name"` // generated when empty
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type MapResponse struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Alive  int      `json:"alive"`
	Rows   []string `json:"rows"`
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log.Named("http")))

	api := r.Group("/api")
	api.GET("/npcs", listHandler(d))
	api.POST("/npcs", createHandler(d))
	api.GET("/map", mapHandler(d))
	api.GET("/kills", killsHandler(d))
	api.POST("/roster/save", saveRosterHandler(d))

	if d.Hub != nil {
		r.GET("/ws", HandleWebsocket(d.Hub, d.Registry, d.Log))
	}

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func listHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d.Registry.Records())
	}
}

func createHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Name == "" {
			req.Name = d.Factory.NextName()
		}

		e, err := d.Factory.Create(req.Kind, req.Name, req.X, req.Y)
		if err != nil {
			var verr *world.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
				return
			}

			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		d.Registry.Add(e)
		d.Log.Info("NPC created", zap.String("kind", e.Kind().String()), zap.String("name", e.Name()))
		c.JSON(http.StatusCreated, e.Record())
	}
}

func mapHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := d.Registry.Render(d.Factory.Bounds())
		c.JSON(http.StatusOK, MapResponse{
			Width:  f.Width,
			Height: f.Height,
			Alive:  f.Alive,
			Rows:   f.Rows(),
		})
	}
}

func killsHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Ledger == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "kill ledger disabled"})
			return
		}

		limit := 50
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		kills, err := d.Ledger.Recent(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if kills == nil {
			kills = []sink.Kill{}
		}
		c.JSON(http.StatusOK, kills)
	}
}

func saveRosterHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := d.RosterPath
		if path == "" {
			path = world.DefaultRosterPath
		}

		survivors := d.Registry.Survivors()
		if err := world.SaveRosterFile(path, survivors); err != nil {
			d.Log.Error("Roster save failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"path": path, "saved": len(survivors)})
	}
}
