package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipebox/internal/common"
	"recipebox/internal/metrics"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

// DishPrompt asks the model (in Thai) which Thai dish is pictured, its
// ingredients, substitutes and detailed cooking steps.
const DishPrompt = "นี่คืออาหารไทยเมนูอะไร บอกส่วนผสม วัตถุดิบ วัตถุดิบที่ใช้ทดทนกันได้ และขั้นตอนการประกอบอาหารชนิดนี้อย่างละเอียด โดยอธิบายเป็นภาษาไทย"

// Captioner describes an image given an instruction prompt.
type Captioner interface {
	Describe(ctx context.Context, mimeType string, image []byte, prompt string) (string, error)
}

// CaptionService sends food photos to the captioning model.
type CaptionService struct {
	captioner Captioner
	prompt    string
	log       *logrus.Logger
}

// NewCaptionService creates a new CaptionService using DishPrompt.
func NewCaptionService(captioner Captioner, log *logrus.Logger) *CaptionService {
	return &CaptionService{
		captioner: captioner,
		prompt:    DishPrompt,
		log:       log,
	}
}

// DescribeDish returns the model's description of the pictured dish.
func (s *CaptionService) DescribeDish(ctx context.Context, image []byte) (string, error) {
	start := time.Now()

	if len(image) == 0 {
		metrics.RecordCaption("rejected", time.Since(start))
		return "", common.NewValidationError("file", "image is empty")
	}
	mtype := mimetype.Detect(image)
	if !strings.HasPrefix(mtype.String(), "image/") {
		metrics.RecordCaption("rejected", time.Since(start))
		return "", common.NewValidationError("file", fmt.Sprintf("unsupported image type %s", mtype.String()))
	}

	text, err := s.captioner.Describe(ctx, mtype.String(), image, s.prompt)
	if err != nil {
		metrics.RecordCaption("error", time.Since(start))
		s.log.WithError(err).WithField("mime_type", mtype.String()).Warn("caption request failed")
		return "", err
	}

	metrics.RecordCaption("success", time.Since(start))
	s.log.WithFields(logrus.Fields{"mime_type": mtype.String(), "image_bytes": len(image), "chars": len(text)}).Info("caption generated")
	return text, nil
}
