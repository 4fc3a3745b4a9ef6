package service

import (
	"errors"
	"fmt"
	"strings"

	"qrstudio-backend/internal/capacity"
	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/qrcontent"
)

var ErrUnknownKind = errors.New("unknown content kind")

// QRService turns form state into payloads. It holds no mutable state.
type QRService struct {
	micrositeBaseURL string
}

// NewQRService takes the absolute URL of the viewer page, for example
// https://qr.example.com/m. Share links are that URL plus ?p=token.
func NewQRService(micrositeBaseURL string) *QRService {
	return &QRService{micrositeBaseURL: micrositeBaseURL}
}

func (s *QRService) Kinds() []qrcontent.KindSpec {
	return qrcontent.Catalog()
}

// Generate computes the payload for a request from scratch. Capacity is
// reported but never blocks.
func (s *QRService) Generate(req models.GeneratePayloadRequest) (*models.PayloadResponse, error) {
	kind, ok := qrcontent.ParseKind(req.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}

	resp := &models.PayloadResponse{Kind: string(kind)}
	if kind == qrcontent.KindMicrosite {
		cfg := microsite.DefaultConfig()
		if req.Microsite != nil {
			cfg = *req.Microsite
		}
		resp.Payload, resp.Token = s.ShareURL(cfg)
	} else {
		resp.Payload = qrcontent.EncodeWith(kind, req.Fields, qrcontent.Options{StrictEscaping: req.StrictEscaping})
	}

	resp.Capacity = capacity.Assess(resp.Payload)
	observeEncode(string(kind), string(resp.Capacity.Level))
	return resp, nil
}

// ShareURL serializes cfg and composes the viewer link carrying it.
func (s *QRService) ShareURL(cfg microsite.Config) (link, token string) {
	token = microsite.Serialize(cfg)
	return microsite.ComposeURL(s.micrositeBaseURL, token), token
}

// ResolvePayload returns the explicit payload of a render request, or
// computes one from its kind and fields.
func (s *QRService) ResolvePayload(req models.RenderRequest) (string, error) {
	if req.Payload != "" || strings.TrimSpace(req.Kind) == "" {
		return req.Payload, nil
	}
	resp, err := s.Generate(models.GeneratePayloadRequest{
		Kind:           req.Kind,
		Fields:         req.Fields,
		Microsite:      req.Microsite,
		StrictEscaping: req.StrictEscaping,
	})
	if err != nil {
		return "", err
	}
	return resp.Payload, nil
}

// DecodeMicrosite accepts a bare token or a full share URL.
func (s *QRService) DecodeMicrosite(tokenOrURL string) (microsite.Config, error) {
	token, ok := microsite.TokenFromURL(tokenOrURL)
	if !ok {
		observeDecodeFailure()
		return microsite.Config{}, microsite.ErrInvalidToken
	}
	cfg, err := microsite.Decode(token)
	if err != nil {
		observeDecodeFailure()
		return microsite.Config{}, err
	}
	return cfg, nil
}
