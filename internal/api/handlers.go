package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/stats"
)

type seriesResponse struct {
	Granularity stats.Granularity   `json:"granularity"`
	Domain      stats.Domain        `json:"domain"`
	Points      []stats.SeriesPoint `json:"points"`
	Max         int                 `json:"max"`
	Average     float64             `json:"average"`
	Goal        float64             `json:"goal"`
	Scale       stats.YScale        `json:"scale"`
}

type rollingResponse struct {
	stats.RollingSummary
	AverageRate float64         `json:"averageRate"`
	Breakdown   stats.Breakdown `json:"breakdown"`
}

type periodResponse struct {
	Window  stats.Window        `json:"window"`
	Details stats.PeriodDetails `json:"details"`
	Shares  []stats.Slice       `json:"shares"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// snapshot loads the collections or answers 500.
func (s *Server) snapshot(c *gin.Context) (domain.Collections, bool) {
	cols, err := s.src.Snapshot()
	if err != nil {
		s.log.Error().Err(err).Msg("load snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load data"})
		return cols, false
	}
	return cols, true
}

func (s *Server) health(c *gin.Context) {
	hits, misses := s.memo.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "tempo",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.start).Round(time.Second).String(),
		"cache":     gin.H{"entries": s.memo.Len(), "hits": hits, "misses": misses},
	})
}

func (s *Server) granularity(c *gin.Context, param string) (stats.Granularity, error) {
	v := c.Query(param)
	if v == "" {
		return s.opts.Granularity, nil
	}
	return stats.ParseGranularity(v)
}

func (s *Server) series(c *gin.Context) {
	g, err := s.granularity(c, "granularity")
	if err != nil {
		badRequest(c, err)
		return
	}
	d := s.opts.Domain
	if v := c.Query("domain"); v != "" {
		if d, err = stats.ParseDomain(v); err != nil {
			badRequest(c, err)
			return
		}
	}

	cols, ok := s.snapshot(c)
	if !ok {
		return
	}
	pts := s.memo.Series(cols, s.now(), g, d)
	goal := stats.GoalLine(g, float64(s.opts.DailyGoal))
	peak := stats.SeriesMax(pts)

	c.JSON(http.StatusOK, seriesResponse{
		Granularity: g,
		Domain:      d,
		Points:      pts,
		Max:         peak,
		Average:     stats.SeriesAverage(pts),
		Goal:        goal,
		Scale:       stats.SmartYScale(float64(peak), goal),
	})
}

func (s *Server) rolling(c *gin.Context) {
	g, err := s.granularity(c, "range")
	if err != nil {
		badRequest(c, err)
		return
	}
	cols, ok := s.snapshot(c)
	if !ok {
		return
	}
	r := s.memo.Rolling(cols, s.now(), g)
	c.JSON(http.StatusOK, rollingResponse{
		RollingSummary: r,
		AverageRate:    r.AverageRate(),
		Breakdown:      stats.BreakdownOf(r, cols),
	})
}

// dayParam parses a required YYYY-MM-DD query parameter in the server zone.
func (s *Server) dayParam(c *gin.Context, name string) (time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return time.Time{}, fmt.Errorf("missing %s", name)
	}
	if _, err := time.Parse(datekey.Layout, v); err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: want YYYY-MM-DD", name, v)
	}
	t, _ := datekey.ParseIn(v, s.opts.Location)
	return t, nil
}

func (s *Server) period(c *gin.Context) {
	start, err := s.dayParam(c, "start")
	if err != nil {
		badRequest(c, err)
		return
	}
	end, err := s.dayParam(c, "end")
	if err != nil {
		badRequest(c, err)
		return
	}
	if end.Before(start) {
		badRequest(c, fmt.Errorf("end %s is before start %s", datekey.Key(end), datekey.Key(start)))
		return
	}

	cols, ok := s.snapshot(c)
	if !ok {
		return
	}
	w := stats.Window{Start: datekey.StartOfDay(start), End: datekey.EndOfDay(end)}
	pd := stats.CalculateWorkTimeForPeriod(w, cols)
	c.JSON(http.StatusOK, periodResponse{Window: w, Details: pd, Shares: stats.DomainShares(pd)})
}

func floatParam(c *gin.Context, name string, def float64) (float64, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a non-negative number", name, v)
	}
	return f, nil
}

func (s *Server) scale(c *gin.Context) {
	peak, err := floatParam(c, "max", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	ref, err := floatParam(c, "ref", float64(s.opts.DailyGoal))
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, stats.SmartYScale(peak, ref))
}
