package services

import (
	"fmt"

	"github.com/doctorvirtual/api/utils/session"
)

// SubmitIntake stores the intake fields into the session and re-arms the
// one-shot injection. Resubmitting overwrites the previous record, so the
// next message carries the fresh block even if the old one was already
// used.
func SubmitIntake(sess *session.Session, intake session.Intake) {
	sess.Intake = &intake
	sess.IntakeSubmitted = true
	sess.IntakeUsed = false
}

// PrepareMessage prefixes the intake block into exactly the first message
// after an intake submission. Every field is rendered even when empty, so
// the assistant sees a stable shape.
func PrepareMessage(sess *session.Session, raw string) string {
	if !sess.IntakeSubmitted || sess.IntakeUsed || sess.Intake == nil {
		return raw
	}

	sess.IntakeUsed = true
	return formatIntakeBlock(sess.Intake) + "\n" + raw
}

func formatIntakeBlock(intake *session.Intake) string {
	return fmt.Sprintf("Name: %s\nAge: %s\nGender: %s\nSymptoms: %s\nDuration: %s\n",
		intake.Name,
		intake.Age,
		intake.Gender,
		intake.Symptoms,
		intake.Duration,
	)
}
