package app

import (
	"errors"
	"strings"

	"chat_relay_service/internal/chat/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type joinInput struct {
	Username string `validate:"min=2"`
	RoomID   string `validate:"min=3"`
}

// normalizeJoin trim and check a join-room payload
func normalizeJoin(req domain.JoinRoomRequest) (roomID, username string, err error) {
	in := joinInput{
		Username: strings.TrimSpace(req.Username),
		RoomID:   strings.TrimSpace(req.RoomID),
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].StructField() {
			case "Username":
				return "", "", domain.ErrInvalidUsername
			case "RoomID":
				return "", "", domain.ErrInvalidRoomID
			}
		}
		return "", "", err
	}
	return in.RoomID, in.Username, nil
}

// normalizeBody trim a send-message body
func normalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", domain.ErrEmptyMessage
	}
	return body, nil
}
