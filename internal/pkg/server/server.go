package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/buttonplus-integration/internal/pkg/database"
	"github.com/anicoll/buttonplus-integration/internal/pkg/logic"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/mqtt"
	"github.com/anicoll/buttonplus-integration/internal/pkg/transport"
)

var errBadRequest = errors.New("bad request")

// provisioner is the part of the logic service the API reaches. Routes with {ip}
// talk to the device over the LAN.
type provisioner interface {
	Inspect(ctx context.Context, ipAddress string) (model.DeviceConfiguration, error)
	ProvisionDevice(ctx context.Context, ipAddress string) (logic.Provisioned, error)
	SetButtonColors(ctx context.Context, ipAddress string, buttonID, front, wall int) error
	ListDevices(ctx context.Context) ([]database.Device, error)
	ListBackups(ctx context.Context, deviceID string) ([]database.Backup, error)
}

// controls publishes to the device topics. Routes with {id} go through the
// broker and need no LAN access to the device.
type controls interface {
	PublishLabel(deviceID string, buttonID int, label string) error
	PublishTopLabel(deviceID string, buttonID int, label string) error
	PublishBrightness(deviceID string, display mqtt.Display, value int) error
	SetPage(deviceID string, page int) error
}

type server struct {
	logic    provisioner
	controls controls
	logger   *zap.Logger
}

func New(logic provisioner, controls controls) *server {
	return &server{logic: logic, controls: controls, logger: zap.L()}
}

// Handler routes the API and wraps it in LoggingMiddleware.
func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /devices", s.GetDevices)
	mux.HandleFunc("GET /devices/{ip}/config", s.GetDeviceConfig)
	mux.HandleFunc("GET /devices/{ip}/buttons", s.GetButtons)
	mux.HandleFunc("PUT /devices/{ip}/buttons/{button}/color", s.PutButtonColor)
	mux.HandleFunc("POST /devices/{ip}/provision", s.PostProvision)
	mux.HandleFunc("GET /devices/{id}/backups", s.GetBackups)
	mux.HandleFunc("POST /devices/{id}/buttons/{button}/label", s.PostButtonLabel)
	mux.HandleFunc("POST /devices/{id}/brightness/{display}", s.PostBrightness)
	mux.HandleFunc("POST /devices/{id}/page", s.PostPage)
	return LoggingMiddleware(mux)
}

func (s *server) GetDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.logic.ListDevices(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(devices, func(d database.Device, _ int) DeviceResponse {
		return DeviceResponse{
			ID:         d.ID,
			Name:       d.Name,
			IPAddress:  d.IPAddress,
			MACAddress: d.MACAddress,
			Firmware:   d.Firmware,
			Generation: d.Generation,
			UpdatedAt:  d.UpdatedAt,
		}
	}))
}

func (s *server) GetBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.logic.ListBackups(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(backups, func(b database.Backup, _ int) BackupResponse {
		return BackupResponse{
			ID:         b.ID,
			DeviceID:   b.DeviceID,
			IPAddress:  b.IPAddress,
			Generation: b.Generation,
			Firmware:   b.Firmware,
			Size:       len(b.Document),
			CreatedAt:  b.CreatedAt,
		}
	}))
}

func (s *server) GetButtons(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.logic.Inspect(r.Context(), r.PathValue("ip"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(cfg.Buttons(), func(b model.Button, _ int) ButtonResponse {
		front, wall := b.LEDColors()
		connector, _ := cfg.ConnectorFor(b.ID() / 2)
		return ButtonResponse{
			ID:        b.ID(),
			Connector: connector.Type.String(),
			Label:     b.Label(),
			TopLabel:  b.TopLabel(),
			Front:     toRGB(front),
			Wall:      toRGB(wall),
			Topics:    len(b.Topics()),
		}
	}))
}

func (s *server) PutButtonColor(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("ip")
	buttonID, err := buttonFromPath(r)
	if err != nil {
		handleError(w, err)
		return
	}
	req, err := unmarshalPayload[ColorRequest](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if req.Front == nil || req.Wall == nil {
		handleError(w, fmt.Errorf("%w: front and wall are required", errBadRequest))
		return
	}

	front := model.RGBToInt(req.Front.R, req.Front.G, req.Front.B)
	wall := model.RGBToInt(req.Wall.R, req.Wall.G, req.Wall.B)
	if err := s.logic.SetButtonColors(r.Context(), ip, buttonID, front, wall); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) PostBrightness(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("id")
	display := mqtt.Display(r.PathValue("display"))
	req, err := unmarshalPayload[BrightnessRequest](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.controls.PublishBrightness(deviceID, display, req.Value); err != nil {
		handleError(w, err)
		return
	}
	s.logger.Info("brightness published", zap.String("device_id", deviceID), zap.String("display", string(display)), zap.Int("value", req.Value))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) PostPage(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("id")
	req, err := unmarshalPayload[PageRequest](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.controls.SetPage(deviceID, req.Page); err != nil {
		handleError(w, err)
		return
	}
	s.logger.Info("page set", zap.String("device_id", deviceID), zap.Int("page", req.Page))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) GetDeviceConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.logic.Inspect(r.Context(), r.PathValue("ip"))
	if err != nil {
		handleError(w, err)
		return
	}
	doc, err := cfg.MarshalJSON()
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConfigResponse{
		Generation: cfg.Generation(),
		Dirty:      cfg.Dirty(),
		Config:     doc,
	})
}

func (s *server) PostProvision(w http.ResponseWriter, r *http.Request) {
	res, err := s.logic.ProvisionDevice(r.Context(), r.PathValue("ip"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProvisionResponse{
		DeviceID:     res.DeviceID,
		IPAddress:    res.IPAddress,
		Generation:   res.Generation,
		BrokerURL:    res.BrokerURL,
		DeviceTopics: res.DeviceTopics,
		Buttons:      res.Buttons,
		Dangling:     res.Dangling,
	})
}

func (s *server) PostButtonLabel(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("id")
	buttonID, err := buttonFromPath(r)
	if err != nil {
		handleError(w, err)
		return
	}
	req, err := unmarshalPayload[LabelRequest](r)
	if err != nil {
		handleError(w, err)
		return
	}

	publish := s.controls.PublishLabel
	if req.Top {
		publish = s.controls.PublishTopLabel
	}
	if err := publish(deviceID, buttonID, req.Label); err != nil {
		handleError(w, err)
		return
	}
	s.logger.Info("label published", zap.String("device_id", deviceID), zap.Int("button", buttonID), zap.Bool("top", req.Top))
	w.WriteHeader(http.StatusNoContent)
}

func buttonFromPath(r *http.Request) (int, error) {
	buttonID, err := strconv.Atoi(r.PathValue("button"))
	if err != nil || buttonID < 0 {
		return 0, fmt.Errorf("%w: button %q", errBadRequest, r.PathValue("button"))
	}
	return buttonID, nil
}

func toRGB(color int) RGB {
	red, green, blue := model.IntToRGB(color)
	return RGB{R: red, G: green, B: blue}
}

func statusFor(err error) int {
	var statusErr *transport.StatusError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, mqtt.ErrUnknownDisplay),
		errors.Is(err, mqtt.ErrBrightnessOutOfRange),
		errors.Is(err, mqtt.ErrInvalidPage):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrUnknownButton), errors.Is(err, database.ErrNoBackup):
		return http.StatusNotFound
	case errors.Is(err, model.ErrSchemaViolation), errors.Is(err, model.ErrUnsupportedFirmware):
		return http.StatusUnprocessableEntity
	case errors.Is(err, logic.ErrNoBackupStore):
		return http.StatusServiceUnavailable
	case errors.As(err, &statusErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func handleError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("failed to write response", zap.Error(err))
	}
}

func unmarshalPayload[T any](r *http.Request) (*T, error) {
	var out T
	if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return &out, nil
}
