package practicum

import (
	"fmt"

	logx "github.com/tantsiura/homework-bot/pkg/logx"
)

// Verdicts is the closed mapping from review status to the user-facing
// verdict sentence. Statuses outside this set are errors, never defaults.
var Verdicts = map[string]string{
	"approved":  "Работа проверена: ревьюеру всё понравилось. Ура!",
	"reviewing": "Работа взята на проверку ревьюером.",
	"rejected":  "Работа проверена: у ревьюера есть замечания.",
}

// ParseStatus translates one homework record into the notification text.
//
// Failure order mirrors the API contract: a nameless record is unusable
// (warn-logged, then rejected), an absent status cannot be parsed, and a
// present-but-unrecognized status is reported as unknown. The verdict
// lookup happens only after the membership check.
func ParseStatus(log logx.Logger, hw Homework) (string, error) {
	name, ok := hw.GetName()
	if !ok {
		log.Warn("homework record without a name")
		return "", &MissingFieldError{Field: "name"}
	}

	status, ok := hw.GetStatus()
	if !ok {
		return "", &ParseStatusError{Msg: fmt.Sprintf("homework %q carries no status key", name)}
	}

	verdict, ok := Verdicts[status]
	if !ok {
		return "", &UnknownStatusError{Status: status}
	}

	return fmt.Sprintf("Изменился статус проверки работы %q. %s", name, verdict), nil
}
