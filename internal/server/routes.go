package server

import (
	"net/http"
	"time"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(startedAt).String(),
			"service": "ubxctl",
			"version": "0.1.0",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/packets/:class/:msg", func(c *gin.Context) {
		cls := c.Param("class")
		msg := c.Param("msg")
		rec, ok := s.recv.Last(cls, msg)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "no packet seen",
				"class":   cls,
				"message": msg,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"class":   rec.Class,
			"message": rec.Message,
			"fields":  fieldsJSON(rec.Fields),
		})
	})

	s.router.GET("/nmea", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"lines": s.recv.NMEALines()})
	})

	s.router.GET("/errors", func(c *gin.Context) {
		errs := s.recv.Errors()
		out := make([]string, len(errs))
		for i, err := range errs {
			out[i] = err.Error()
		}
		c.JSON(http.StatusOK, gin.H{"errors": out})
	})
}

// fieldsJSON flattens an ordered field map into a JSON array that preserves
// declaration order.
func fieldsJSON(fields *orderedmap.OrderedMap[string, any]) []gin.H {
	out := make([]gin.H, 0, fields.Len())
	for name, v := range fields.AllFromFront() {
		out = append(out, gin.H{"name": name, "value": fieldValueJSON(v)})
	}
	return out
}

func fieldValueJSON(v any) any {
	switch t := v.(type) {
	case *orderedmap.OrderedMap[string, uint32]:
		flags := make([]gin.H, 0, t.Len())
		for name, fv := range t.AllFromFront() {
			flags = append(flags, gin.H{"name": name, "value": fv})
		}
		return flags
	case []*orderedmap.OrderedMap[string, any]:
		reps := make([][]gin.H, len(t))
		for i, rep := range t {
			reps[i] = fieldsJSON(rep)
		}
		return reps
	default:
		return v
	}
}
