package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/dogubilet/ticket-backend/pkg/assistant"
	"github.com/sirupsen/logrus"
)

// Chatbot replies
const (
	ReplyAssistantNotConfigured = "Şu an yapay zeka servisi yapılandırılmamış görünüyor, ama menüden bilet arama işlemlerinizi yapabilirsiniz."
	ReplyEmptyGeneration        = "Şu an yanıt üretirken bir sorun oluştu, lütfen tekrar dener misiniz."
)

const assistantPrompt = `Sen Doğu Bilet isimli otobüs bileti web sitesinin yapay zeka asistanısın.
Görevin:
- Kullanıcının bilet arama, bilet alma, iade, sefer süresi, fiyat bilgisi vb. konularda soru sormasına yardımcı olmak.
- Eğer kullanıcı cümlesinde hem kalkış, hem varış şehri hem de tarih belirtirse,
  sistem zaten uygun seferleri bulup kullanıcıyı sefer arama sayfasına yönlendirecektir.
- Sen genel olarak açıklama, yönlendirme, kurallar vb. konularda yardımcı ol.
- Bilet sistemi dışındaki konularda ısrar edilirse
  'Ben yalnızca bilet sistemiyle ilgili sorulara yardımcı olabiliyorum.' de.
- Cevapları kısa ve anlaşılır Türkçe ile ver.

Kullanıcının sorusu:
"""%s"""`

// TripSearcher finds priced trips for a route and date
type TripSearcher interface {
	SearchTrips(ctx context.Context, origin, destination string, date models.Date) ([]models.Trip, error)
}

// ChatbotService answers trip questions from the catalog and hands
// everything else to a text generator
type ChatbotService struct {
	searcher  TripSearcher
	extractor *QueryExtractor
	generator assistant.TextGenerator
	loc       *time.Location
	now       func() time.Time
	logger    *logrus.Logger
}

// NewChatbotService creates a new ChatbotService. generator may be nil.
func NewChatbotService(
	searcher TripSearcher,
	extractor *QueryExtractor,
	generator assistant.TextGenerator,
	loc *time.Location,
	logger *logrus.Logger,
) *ChatbotService {
	return &ChatbotService{
		searcher:  searcher,
		extractor: extractor,
		generator: generator,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the wall clock, for tests
func (s *ChatbotService) WithClock(now func() time.Time) *ChatbotService {
	s.now = now
	return s
}

// Reply answers one chat message
func (s *ChatbotService) Reply(ctx context.Context, message string) (*models.ChatResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, models.ErrEmptyMessage
	}

	today := models.DateOf(s.now().In(s.loc))
	if query, ok := s.extractor.Extract(message, today); ok {
		return s.answerTripQuery(ctx, query)
	}

	if s.generator == nil {
		return &models.ChatResponse{Answer: ReplyAssistantNotConfigured}, nil
	}

	answer, err := s.generator.Generate(ctx, fmt.Sprintf(assistantPrompt, message))
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"generator": s.generator.GetName(),
			"error":     err.Error(),
		}).Error("Text generation failed")
		return nil, fmt.Errorf("%w: %v", models.ErrAssistantUnavailable, err)
	}
	if answer == "" {
		answer = ReplyEmptyGeneration
	}
	return &models.ChatResponse{Answer: answer}, nil
}

func (s *ChatbotService) answerTripQuery(ctx context.Context, query models.TripQuery) (*models.ChatResponse, error) {
	trips, err := s.searcher.SearchTrips(ctx, query.Origin, query.Destination, query.Date)
	if err != nil {
		return nil, err
	}

	if len(trips) == 0 {
		return &models.ChatResponse{
			Answer: fmt.Sprintf("%s tarihinde %s → %s için kayıtlı bir sefer bulunamadı.",
				query.Date, query.Origin, query.Destination),
		}, nil
	}

	return &models.ChatResponse{
		Answer: fmt.Sprintf("%s tarihinde %s → %s için %d adet sefer bulundu. Seferler sayfasına yönlendiriyorum.",
			query.Date, query.Origin, query.Destination, len(trips)),
		Redirect: SearchURL(query),
		Trips:    trips,
	}, nil
}

// SearchURL is the trip search endpoint for a query
func SearchURL(query models.TripQuery) string {
	params := url.Values{}
	params.Set("origin", query.Origin)
	params.Set("destination", query.Destination)
	params.Set("date", query.Date.String())
	return "/api/v1/trips/search?" + params.Encode()
}
