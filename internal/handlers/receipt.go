package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/ocr"
	"github.com/coney-counter/coney-counter-api/internal/ratelimit"
	"github.com/coney-counter/coney-counter-api/internal/receipts"
	"github.com/coney-counter/coney-counter-api/internal/storage"
	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
)

// TextExtractor turns a receipt image into text.
type TextExtractor interface {
	Configured() bool
	ExtractText(ctx context.Context, jpeg []byte) (string, error)
}

type ReceiptHandler struct {
	authHandler *auth.AuthHandler
	ocr         TextExtractor
	store       storage.Store
	limiter     ratelimit.Limiter
	logger      *logrus.Logger
}

func NewReceiptHandler(authHandler *auth.AuthHandler, extractor TextExtractor, store storage.Store, limiter ratelimit.Limiter, logger *logrus.Logger) *ReceiptHandler {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &ReceiptHandler{authHandler: authHandler, ocr: extractor, store: store, limiter: limiter, logger: logger}
}

type ScanReceiptInput struct {
	auth.AuthInput
	RawBody []byte
}

type ScanReceiptOutput struct {
	Body struct {
		Scan     receipts.Scan `json:"scan"`
		ImageURL string        `json:"image_url,omitempty"`
		ImageKey string        `json:"image_key,omitempty"`
	}
}

func (h *ReceiptHandler) HandleScan(ctx context.Context, input *ScanReceiptInput) (*ScanReceiptOutput, error) {
	user, err := h.authHandler.RequireApproved(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res, err := h.limiter.Allow(ctx, fmt.Sprintf("receipts:%d", user.ID))
	if err != nil {
		// Fail open.
		logging.LogError(h.logger, "handlers", "ReceiptHandler.HandleScan", "rate limiter", user.ID, err)
	} else if !res.Allowed {
		return nil, huma.Error429TooManyRequests(fmt.Sprintf("Too many receipt scans, retry in %ds", int(math.Ceil(res.RetryAfter.Seconds()))))
	}

	if len(input.RawBody) == 0 {
		return nil, huma.Error400BadRequest("Empty request body")
	}
	if ct := http.DetectContentType(input.RawBody); ct != "image/jpeg" && ct != "image/png" && ct != "image/gif" {
		return nil, huma.Error415UnsupportedMediaType("Receipt must be a JPEG, PNG or GIF image")
	}

	if h.ocr == nil || !h.ocr.Configured() {
		return nil, huma.Error503ServiceUnavailable("Receipt scanning is not available")
	}

	jpeg, err := receipts.Preprocess(input.RawBody)
	if err != nil {
		if errors.Is(err, receipts.ErrNotAnImage) {
			return nil, huma.Error422UnprocessableEntity("Could not read the image")
		}
		return nil, serviceError(h.logger, "ReceiptHandler.HandleScan", err)
	}

	text, err := h.ocr.ExtractText(ctx, jpeg)
	if err != nil {
		logging.LogError(h.logger, "handlers", "ReceiptHandler.HandleScan", "ocr", user.ID, err)
		if errors.Is(err, ocr.ErrNotConfigured) {
			return nil, huma.Error503ServiceUnavailable("Receipt scanning is not available")
		}
		return nil, huma.Error502BadGateway("Could not read the receipt")
	}

	out := &ScanReceiptOutput{}
	out.Body.Scan = receipts.Parse(text)

	if h.store != nil {
		key := storage.ReceiptKey(user.ID, ".jpg")
		url, err := h.store.Put(ctx, key, jpeg, "image/jpeg")
		if err != nil {
			logging.LogError(h.logger, "handlers", "ReceiptHandler.HandleScan", "store image", key, err)
		} else {
			out.Body.ImageKey = key
			out.Body.ImageURL = url
		}
	}
	return out, nil
}
