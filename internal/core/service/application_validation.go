package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
	"github.com/sevakendra/portal-api/internal/pkg/nepdate"
)

const (
	sideFront = "front"
	sideBack  = "back"
)

// newSubmitValidator returns a validator that reports json field names and
// understands the ymd date tag.
func newSubmitValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		return nepdate.MatchesLayout(fl.Field().String())
	})
	return v
}

func normalizeSubmitInput(in *ports.SubmitApplicationInput) {
	for _, f := range []*string{
		&in.Service, &in.FullName, &in.FullNameNe, &in.DateOfBirth, &in.DateOfBirthBS,
		&in.CitizenshipNumber, &in.Address, &in.Phone, &in.Email,
		&in.FatherName, &in.FatherNameNe, &in.MotherName, &in.MotherNameNe,
		&in.GrandfatherName, &in.GrandfatherNameNe,
	} {
		*f = strings.TrimSpace(*f)
	}
	in.Service = strings.ToLower(in.Service)
}

// validateSubmission checks in and fills in the derivable date of birth.
// It has no side effects beyond in and returns *domain.ValidationError.
func (s *ApplicationService) validateSubmission(in *ports.SubmitApplicationInput) error {
	normalizeSubmitInput(in)

	if err := s.validate.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fieldError(ve[0])
		}
		return domain.NewValidationError("input", err.Error())
	}

	if err := s.checkDatesOfBirth(in); err != nil {
		return err
	}

	if err := s.checkDocument("citizenship_front", in.Front); err != nil {
		return err
	}
	return s.checkDocument("citizenship_back", in.Back)
}

func (s *ApplicationService) checkDatesOfBirth(in *ports.SubmitApplicationInput) error {
	if in.DateOfBirth == "" && in.DateOfBirthBS == "" {
		return domain.NewValidationError("date_of_birth", "or date_of_birth_bs is required")
	}
	if in.DateOfBirth != "" {
		if _, err := nepdate.ParseAD(in.DateOfBirth); err != nil {
			return domain.NewValidationError("date_of_birth", "is not a valid calendar date")
		}
	}
	if in.DateOfBirthBS != "" {
		if _, err := nepdate.ParseBS(in.DateOfBirthBS); err != nil {
			return domain.NewValidationError("date_of_birth_bs", "must have month 01-12 and day 01-32")
		}
	}

	switch {
	case in.DateOfBirth != "" && in.DateOfBirthBS != "":
		ad, err := s.dates.BSToAD(in.DateOfBirthBS)
		if err != nil {
			return domain.NewValidationError("date_of_birth_bs", "cannot be converted to AD")
		}
		if ad != in.DateOfBirth {
			return domain.NewValidationError("date_of_birth_bs", "does not match date_of_birth")
		}
	case in.DateOfBirth != "":
		if bs, err := s.dates.ADToBS(in.DateOfBirth); err == nil {
			in.DateOfBirthBS = bs
		}
	default:
		if ad, err := s.dates.BSToAD(in.DateOfBirthBS); err == nil {
			in.DateOfBirth = ad
		}
	}
	return nil
}

func (s *ApplicationService) checkDocument(field string, doc *ports.DocumentInput) error {
	if doc == nil || len(doc.Data) == 0 {
		return domain.NewValidationError(field, "is required")
	}
	if s.maxUploadBytes > 0 && int64(len(doc.Data)) > s.maxUploadBytes {
		return domain.NewValidationError(field, fmt.Sprintf("must not exceed %d bytes", s.maxUploadBytes))
	}
	if !strings.HasPrefix(mimetype.Detect(doc.Data).String(), "image/") {
		return domain.NewValidationError(field, "must be an image")
	}
	return nil
}

// documentType returns the content type and file extension (without dot)
// detected for data.
func documentType(data []byte) (string, string) {
	mt := mimetype.Detect(data)
	ext := strings.TrimPrefix(mt.Extension(), ".")
	if ext == "" {
		ext = "bin"
	}
	return mt.String(), ext
}

func fieldError(fe validator.FieldError) *domain.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "is required")
	case "oneof":
		return domain.NewValidationError(field, "must be one of: "+fe.Param())
	case "email":
		return domain.NewValidationError(field, "must be a valid email address")
	case "ymd":
		return domain.NewValidationError(field, "must match YYYY/MM/DD")
	default:
		return domain.NewValidationError(field, "is invalid")
	}
}
