package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

type WeeklyBlockRequest struct {
	Day      domain.DayOfWeek `json:"diaSemana"`
	Start    domain.Clock     `json:"horaInicio"`
	End      domain.Clock     `json:"horaFin"`
	Modality domain.Modality  `json:"modalidad"`
}

type WeeklyTemplateRequest []WeeklyBlockRequest

func (req WeeklyTemplateRequest) Validate() error {
	for i := range req {
		b := &req[i]
		err := validation.ValidateStruct(
			b,
			validation.Field(&b.Day, validation.Required, validation.In(toInterfaces(domain.DaysOfWeek())...)),
			validation.Field(&b.Modality, validation.Required, validation.In(domain.ModalityVirtual, domain.ModalityInPerson)),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (req WeeklyTemplateRequest) Blocks() []domain.WeeklyBlock {
	blocks := make([]domain.WeeklyBlock, 0, len(req))
	for _, b := range req {
		blocks = append(blocks, domain.WeeklyBlock{
			Day:      b.Day,
			Start:    b.Start,
			End:      b.End,
			Modality: b.Modality,
		})
	}

	return blocks
}

func toInterfaces(days []domain.DayOfWeek) []interface{} {
	out := make([]interface{}, 0, len(days))
	for _, d := range days {
		out = append(out, d)
	}

	return out
}

type MonthRequest struct {
	Month int `json:"mes"`
	Year  int `json:"anio"`
}

func (req *MonthRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Month, validation.Required, validation.Min(1), validation.Max(12)),
		validation.Field(&req.Year, validation.Required, validation.Min(2000), validation.Max(9999)),
	)
}

func (req *MonthRequest) TimeMonth() time.Month {
	return time.Month(req.Month)
}

type ModalityRequest struct {
	Modality domain.Modality `json:"modalidad"`
}

func (req *ModalityRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Modality, validation.Required, validation.In(domain.ModalityVirtual, domain.ModalityInPerson)),
	)
}

type DateRangeRequest struct {
	From string `form:"fechaInicio"`
	To   string `form:"fechaFin"`
}

func (req *DateRangeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.From, validation.Required, validation.Date(domain.DateLayout)),
		validation.Field(&req.To, validation.Required, validation.Date(domain.DateLayout)),
	)
}

// Dates must only be called after Validate.
func (req *DateRangeRequest) Dates() (domain.Date, domain.Date) {
	from, _ := domain.ParseDate(req.From)
	to, _ := domain.ParseDate(req.To)

	return from, to
}
