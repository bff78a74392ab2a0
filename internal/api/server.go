package api

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/palmdb/internal/logger"
	"github.com/samcharles93/palmdb/internal/report"
	"github.com/samcharles93/palmdb/pkg/pdb"
)

// DefaultMaxUploadBytes caps request bodies when Config leaves it unset.
const DefaultMaxUploadBytes = 16 << 20

// Config holds the codec settings the server applies to every upload.
type Config struct {
	MaxUploadBytes int64
	Strict         bool
	UnixEpoch      bool
	Location       *time.Location
	Logger         logger.Logger
}

type Server struct {
	store   *DatabaseStore
	metrics *Metrics
	cfg     Config
	log     logger.Logger
	clock   func() time.Time
}

func NewServer(store *DatabaseStore, metrics *Metrics, cfg Config) *Server {
	if store == nil {
		store = NewDatabaseStore()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return &Server{
		store:   store,
		metrics: metrics,
		cfg:     cfg,
		log:     cfg.Logger.With("component", "api"),
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/databases", s.instrument("create", s.handleCreate))
	e.GET("/v1/databases", s.instrument("list", s.handleList))
	e.GET("/v1/databases/:id", s.instrument("get", s.handleGet))
	e.GET("/v1/databases/:id/records/:index", s.instrument("record", s.handleRecord))
	e.GET("/v1/databases/:id/file", s.instrument("file", s.handleFile))
	e.DELETE("/v1/databases/:id", s.instrument("delete", s.handleDelete))

	metrics := s.metrics.Handler()
	e.GET("/metrics", func(c *echo.Context) error {
		metrics.ServeHTTP(c.Response(), c.Request())
		return nil
	})
}

func (s *Server) instrument(route string, h func(c *echo.Context) (int, error)) echo.HandlerFunc {
	return func(c *echo.Context) error {
		status, err := h(c)
		s.metrics.RecordRequest(route, status)
		return err
	}
}

// DatabaseObject is the JSON form of a stored container.
type DatabaseObject struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Filename  string `json:"filename,omitempty"`
	CreatedAt int64  `json:"created_at"`
	*report.Report
}

type DatabaseList struct {
	Object string           `json:"object"`
	Data   []DatabaseObject `json:"data"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) handleCreate(c *echo.Context) (int, error) {
	data, err := readBody(c.Request().Body, s.cfg.MaxUploadBytes)
	if err != nil {
		s.metrics.RecordUpload(0, false)
		return writeCodecError(c, err)
	}

	entry, err := s.decodeUpload(data)
	if err != nil {
		s.metrics.RecordUpload(len(data), false)
		s.log.Warn("rejected upload", "size", len(data), "error", err)
		return writeCodecError(c, err)
	}
	entry.Filename = uploadFilename(c.QueryParam("filename"))
	entry.CreatedAt = s.clock()

	stored := s.store.Save(entry)
	s.metrics.RecordUpload(len(data), true)
	s.metrics.UpdateStore(s.store.Stats())
	s.log.Info("stored database",
		"id", stored.ID,
		"name", stored.DB.Name,
		"records", stored.DB.NumRecords(),
		"size", stored.Size,
		"diagnostics", len(stored.Diagnostics),
	)
	return http.StatusCreated, c.JSON(http.StatusCreated, s.object(stored, report.Options{}))
}

func (s *Server) decodeUpload(data []byte) (Entry, error) {
	start := s.clock()
	idx, err := pdb.ReadIndex(data)
	if err != nil {
		return Entry{}, err
	}
	opts := pdb.GenericReadOptions()
	opts.Strict = s.cfg.Strict
	opts.Location = s.cfg.Location
	opts.Logger = s.log
	db, diags, err := pdb.Decode(data, opts)
	if err != nil {
		return Entry{}, err
	}
	s.metrics.ObserveCodec("decode", s.clock().Sub(start))
	for _, d := range diags {
		s.metrics.RecordDiagnostic(string(d.Region))
	}
	return Entry{Size: len(data), DB: db, Index: idx, Diagnostics: diags}, nil
}

// uploadFilename keeps only the base name of a client-supplied filename.
func uploadFilename(raw string) string {
	name := path.Base(strings.TrimSpace(raw))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func (s *Server) handleList(c *echo.Context) (int, error) {
	entries := s.store.List()
	out := DatabaseList{Object: "list", Data: make([]DatabaseObject, 0, len(entries))}
	for _, e := range entries {
		out.Data = append(out.Data, s.object(e, report.Options{}))
	}
	return http.StatusOK, c.JSON(http.StatusOK, out)
}

func (s *Server) handleGet(c *echo.Context) (int, error) {
	entry, ok := s.store.Get(c.Param("id"))
	if !ok {
		return http.StatusNotFound, writeNotFound(c, "database not found")
	}
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return http.StatusBadRequest, writeBadRequest(c, err.Error())
	}
	return http.StatusOK, c.JSON(http.StatusOK, s.object(entry, report.Options{Records: true, Limit: limit}))
}

func (s *Server) handleRecord(c *echo.Context) (int, error) {
	entry, ok := s.store.Get(c.Param("id"))
	if !ok {
		return http.StatusNotFound, writeNotFound(c, "database not found")
	}
	i, err := parseIndex(c.Param("index"))
	if err != nil {
		return http.StatusBadRequest, writeBadRequest(c, err.Error())
	}
	if i >= len(entry.DB.Records) {
		return http.StatusNotFound, writeNotFound(c, fmt.Sprintf("record %d not found", i))
	}

	rec := entry.DB.Records[i]
	h := c.Response().Header()
	h.Set("X-Pdb-Attributes", strconv.Itoa(int(rec.Attrs)))
	h.Set("X-Pdb-Category", strconv.Itoa(rec.Attrs.Category()))
	return http.StatusOK, c.Blob(http.StatusOK, mimeOctetStream, rec.Data)
}

func (s *Server) handleFile(c *echo.Context) (int, error) {
	entry, ok := s.store.Get(c.Param("id"))
	if !ok {
		return http.StatusNotFound, writeNotFound(c, "database not found")
	}

	opts := pdb.WriteOptions{UnixEpoch: s.cfg.UnixEpoch, Location: s.cfg.Location}
	switch c.QueryParam("epoch") {
	case "":
	case "unix":
		opts.UnixEpoch = true
	case "palm":
		opts.UnixEpoch = false
	default:
		return http.StatusBadRequest, writeBadRequest(c, "epoch must be unix or palm")
	}

	start := s.clock()
	data, err := pdb.Encode(entry.DB, opts)
	if err != nil {
		return writeCodecError(c, err)
	}
	s.metrics.ObserveCodec("encode", s.clock().Sub(start))

	name := entry.Filename
	if name == "" {
		name = entry.ID + ".pdb"
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	return http.StatusOK, c.Blob(http.StatusOK, mimeOctetStream, data)
}

func (s *Server) handleDelete(c *echo.Context) (int, error) {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return http.StatusNotFound, writeNotFound(c, "database not found")
	}
	s.metrics.UpdateStore(s.store.Stats())
	s.log.Info("deleted database", "id", id)
	return http.StatusOK, c.JSON(http.StatusOK, DeleteResponse{
		ID:      id,
		Object:  "database",
		Deleted: true,
	})
}

func (s *Server) object(e *Entry, opts report.Options) DatabaseObject {
	return DatabaseObject{
		ID:        e.ID,
		Object:    "database",
		Filename:  e.Filename,
		CreatedAt: e.CreatedAt.Unix(),
		Report:    report.FromDatabase(e.DB, e.Index, e.Diagnostics, opts),
	}
}
