// Package contact stores submissions of the floating contact form and
// optionally forwards them to a spreadsheet web app.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ObjectTypes = []string{
	"Studio / Publisher",
	"Investor",
	"Service Provider",
	"Other",
}

var Interests = []string{
	"Marketing agency services",
	"Gaming business strategy",
	"Go-to-market services",
	"Talk to GameGeek in person",
	"Other",
}

type Submission struct {
	ID            string    `db:"id" json:"id"`
	CreatedAt     time.Time `db:"created_at" json:"timestamp"`
	ObjectType    string    `db:"object_type" json:"objectType"`
	Interest      string    `db:"interest" json:"interest"`
	FullName      string    `db:"full_name" json:"fullName"`
	Email         string    `db:"email" json:"email"`
	Title         string    `db:"title" json:"title"`
	CompanyName   string    `db:"company_name" json:"companyName"`
	SocialContact string    `db:"social_contact" json:"socialContact"`
	Forwarded     bool      `db:"forwarded" json:"-"`
}

func in(list []string) validation.Rule {
	vals := make([]interface{}, len(list))
	for i, v := range list {
		vals[i] = v
	}
	return validation.In(vals...)
}

func (s Submission) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ObjectType, validation.Required, in(ObjectTypes)),
		validation.Field(&s.Interest, validation.Required, in(Interests)),
		validation.Field(&s.FullName, validation.Required),
		validation.Field(&s.Email, validation.Required, is.EmailFormat),
		validation.Field(&s.Title, validation.Required),
		validation.Field(&s.CompanyName, validation.Required),
	)
}

type Service struct {
	db        *sqlx.DB
	sheetsURL string
	http      *http.Client
	logger    *zap.Logger
	now       func() time.Time
}

// NewService stores submissions in db. A non-empty sheetsURL additionally
// receives every submission as JSON.
func NewService(db *sqlx.DB, sheetsURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:        db,
		sheetsURL: sheetsURL,
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
		now:       time.Now,
	}
}

// Submit validates and stores s. Forwarding failures are logged only.
func (svc *Service) Submit(ctx context.Context, s Submission) (*Submission, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.ID = uuid.NewString()
	s.CreatedAt = svc.now().UTC()

	if svc.sheetsURL != "" {
		if err := svc.forward(ctx, s); err != nil {
			svc.logger.Warn("forward contact submission", zap.String("id", s.ID), zap.Error(err))
		} else {
			s.Forwarded = true
		}
	}

	_, err := svc.db.NamedExecContext(ctx, `
		INSERT INTO contact_submissions
			(id, created_at, object_type, interest, full_name, email, title, company_name, social_contact, forwarded)
		VALUES
			(:id, :created_at, :object_type, :interest, :full_name, :email, :title, :company_name, :social_contact, :forwarded)`,
		s)
	if err != nil {
		return nil, errors.Wrap(err, "store contact submission")
	}
	svc.logger.Info("contact submission", zap.String("id", s.ID), zap.String("interest", s.Interest))
	return &s, nil
}

func (svc *Service) forward(ctx context.Context, s Submission) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode submission")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.sheetsURL, bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(err, "sheets request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := svc.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "post to sheets")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return errors.Errorf("sheets answered %s", resp.Status)
	}
	return nil
}

// List returns all submissions, newest first.
func (svc *Service) List(ctx context.Context) ([]Submission, error) {
	var ret []Submission
	err := svc.db.SelectContext(ctx, &ret, `
		SELECT id, created_at, object_type, interest, full_name, email, title, company_name, social_contact, forwarded
		FROM contact_submissions ORDER BY created_at DESC`)
	return ret, errors.Wrap(err, "list contact submissions")
}
