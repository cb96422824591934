// sim/sink.go

package sim

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/mmp/aerosim/aviation"
)

// EventKind enumerates OccupancyEvent kinds.
type EventKind string

const (
	EventInitial           EventKind = "initial"
	EventTaxiBegin         EventKind = "taxi-begin"
	EventTakeoff           EventKind = "takeoff"
	EventLanding           EventKind = "landing"
	EventDepartDestination EventKind = "depart-destination"
	EventExternalArrival   EventKind = "external-arrival"
	EventExternalDeparture EventKind = "external-departure"
	EventCapacityRefused   EventKind = "capacity-refused"
)

// OccupancyEvent is one per-airport state change.
type OccupancyEvent struct {
	Minute         float64   `json:"minute"`
	Airport        string    `json:"airport"`
	Kind           EventKind `json:"event"`
	OccupancyAfter int       `json:"occupancy_after"`
	Capacity       int       `json:"capacity"`
}

// FlightRecord is one completed (or fatally aborted) flight's outcome.
type FlightRecord struct {
	ID                      string  `json:"id_vuelo"`
	Origin                  string  `json:"origen"`
	ScheduledDestination    string  `json:"destino_programado"`
	FinalDestination        string  `json:"destino_final"`
	Diverted                bool    `json:"redirigido"`
	Exterior                bool    `json:"es_exterior"`
	ScheduledDeparture      float64 `json:"salida_programada"`
	RealArrival             float64 `json:"llegada_real"`
	TotalDelayMinutes       float64 `json:"retraso_total_min"`
	RedirectionDelayMinutes float64 `json:"retraso_por_redireccion_min"`
	FuelConsumedL           float64 `json:"combustible_consumido_l"`
	FuelRemainingL          float64 `json:"combustible_restante_est_l"`
	AircraftType            string  `json:"tipo_aeronave"`

	PhaseMinutes  map[aviation.Phase]float64            `json:"tiempos_fase_min"`
	PhaseKM       map[aviation.Phase]float64            `json:"distancias_fase_km"`
	PhaseSpeedKMH map[aviation.Phase]float64            `json:"velocidades_fase_kmh"`
	PhaseWind     map[aviation.Phase]aviation.WindLabel `json:"vientos_fase"`

	QueueWaitMinutes float64 `json:"tiempo_espera_cola_min"`

	PlannedDistanceKM float64 `json:"distancia_plan_km"`
	RouteDistanceKM   float64 `json:"distancia_ruta_km"`

	FatalError string `json:"error_fatal,omitempty"`
}

// PhaseLogEntry is one optional per-phase row, grounded on
// _registrar_log_fase.
type PhaseLogEntry struct {
	FlightID             string             `json:"id_vuelo"`
	Phase                aviation.Phase     `json:"fase"`
	Origin               string             `json:"origen"`
	ScheduledDestination string             `json:"destino_programado"`
	FinalDestination     string             `json:"destino_final"`
	StartMinute          float64            `json:"minuto_inicio"`
	EndMinute            float64            `json:"minuto_fin"`
	DistanceKM           float64            `json:"distancia_km"`
	SpeedKMH             float64            `json:"velocidad_kmh"`
	Wind                 aviation.WindLabel `json:"viento"`
	FuelConsumedL        float64            `json:"combustible_consumido_l"`
	Note                 string             `json:"nota,omitempty"`
}

///////////////////////////////////////////////////////////////////////////
// Sinks

// RecordSink receives completed FlightRecords.
type RecordSink interface {
	PutRecord(r FlightRecord)
	Close() error
}

// OccupancySink receives OccupancyEvents.
type OccupancySink interface {
	PutEvent(e OccupancyEvent)
	Close() error
}

// PhaseLogSink receives PhaseLogEntries.
type PhaseLogSink interface {
	PutPhase(p PhaseLogEntry)
	Close() error
}

///////////////////////////////////////////////////////////////////////////
// In-memory sinks (default; also what tests inspect against).

type MemoryRecordSink struct {
	mu      sync.Mutex
	Records []FlightRecord
}

func NewMemoryRecordSink() *MemoryRecordSink { return &MemoryRecordSink{} }

func (s *MemoryRecordSink) PutRecord(r FlightRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, r)
}
func (s *MemoryRecordSink) Close() error { return nil }

type MemoryOccupancySink struct {
	mu     sync.Mutex
	Events []OccupancyEvent
}

func NewMemoryOccupancySink() *MemoryOccupancySink { return &MemoryOccupancySink{} }

func (s *MemoryOccupancySink) PutEvent(e OccupancyEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, e)
}
func (s *MemoryOccupancySink) Close() error { return nil }

// LastEventPerAirport returns, for each airport, its last-logged occupancy
// event. Engine.NextDayState does not use it; it reads occupancy from the
// resources via FinalOccupancy.
func (s *MemoryOccupancySink) LastEventPerAirport() map[string]OccupancyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := make(map[string]OccupancyEvent)
	for _, e := range s.Events {
		last[e.Airport] = e
	}
	return last
}

type MemoryPhaseLogSink struct {
	mu     sync.Mutex
	Phases []PhaseLogEntry
}

func NewMemoryPhaseLogSink() *MemoryPhaseLogSink { return &MemoryPhaseLogSink{} }

func (s *MemoryPhaseLogSink) PutPhase(p PhaseLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Phases = append(s.Phases, p)
}
func (s *MemoryPhaseLogSink) Close() error { return nil }

///////////////////////////////////////////////////////////////////////////
// JSON-lines file sinks, optionally zstd-compressed.

// JSONLinesRecordSink appends one JSON object per line to a file, optionally
// through a zstd encoder.
type JSONLinesRecordSink struct {
	mu  sync.Mutex
	w   io.WriteCloser
	enc *zstd.Encoder
	f   *os.File
	bw  *bufio.Writer
}

// NewJSONLinesRecordSink opens (creating/truncating) path for append-only
// JSON-lines output. If compress is true, records are written through a
// zstd encoder and path should carry a .zst extension.
func NewJSONLinesRecordSink(path string, compress bool) (*JSONLinesRecordSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating record sink file: %w", err)
	}
	bw := bufio.NewWriter(f)
	s := &JSONLinesRecordSink{f: f, bw: bw}
	if compress {
		enc, err := zstd.NewWriter(bw)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		s.enc = enc
	}
	return s, nil
}

func (s *JSONLinesRecordSink) writer() io.Writer {
	if s.enc != nil {
		return s.enc
	}
	return s.bw
}

func (s *JSONLinesRecordSink) PutRecord(r FlightRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(r)
	if err != nil {
		return
	}
	w := s.writer()
	w.Write(b)
	w.Write([]byte("\n"))
}

func (s *JSONLinesRecordSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc != nil {
		if err := s.enc.Close(); err != nil {
			return err
		}
	}
	if err := s.bw.Flush(); err != nil {
		return err
	}
	return s.f.Close()
}

///////////////////////////////////////////////////////////////////////////
// GCS archival sink: uploads a gzip-compressed JSON-lines blob of every
// record seen, on Close. Optional; wired only when a caller supplies a
// bucket and (optionally) a static OAuth2 token.

type GCSSink struct {
	mu      sync.Mutex
	records []FlightRecord
	bucket  string
	object  string
	client  *storage.Client
}

// NewGCSSink creates a sink that buffers records in memory and uploads them
// as one gzip-compressed JSON-lines object to bucket/object on Close. If
// token is non-nil, it is used as a static OAuth2 credential instead of
// relying on ambient application-default credentials.
func NewGCSSink(ctx context.Context, bucket, object string, token *oauth2.Token) (*GCSSink, error) {
	var opts []option.ClientOption
	if token != nil {
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return &GCSSink{bucket: bucket, object: object, client: client}, nil
}

func (s *GCSSink) PutRecord(r FlightRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

func (s *GCSSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	w := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	gz := gzip.NewWriter(w)
	enc := json.NewEncoder(gz)
	for _, r := range s.records {
		if err := enc.Encode(r); err != nil {
			gz.Close()
			w.Close()
			return fmt.Errorf("encoding record for GCS upload: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
