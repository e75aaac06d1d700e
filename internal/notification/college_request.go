package notification

import (
	"context"
	"fmt"

	"campus-reveal-backend/internal/model"
	"campus-reveal-backend/internal/parse"
)

// CollegeRequestSubject is the subject line of every addition request.
const CollegeRequestSubject = "College Addition Request"

// CollegeRequestBody renders req as the plain-text body sent to the
// administrator. Blank ranks are shown as the sentinel.
func CollegeRequestBody(req model.CollegeRequest) string {
	return fmt.Sprintf("Request details:\nName: %s\nCity: %s\nState: %s\nNIRF Rank: %s\nRank: %s\n",
		req.Name,
		req.City,
		req.State,
		parse.NormalizeRank(req.NIRFRank),
		parse.NormalizeRank(req.Rank),
	)
}

// CollegeRequestNotifier forwards addition requests to a fixed mailbox.
type CollegeRequestNotifier struct {
	mailer Mailer
	from   string
	to     string
}

// NewCollegeRequestNotifier creates a notifier sending from one address to another.
func NewCollegeRequestNotifier(mailer Mailer, from, to string) *CollegeRequestNotifier {
	return &CollegeRequestNotifier{mailer: mailer, from: from, to: to}
}

// Notify sends one message describing req and waits for the relay to accept it.
func (n *CollegeRequestNotifier) Notify(ctx context.Context, req model.CollegeRequest) error {
	return n.mailer.Send(ctx, Message{
		From:    n.from,
		To:      n.to,
		Subject: CollegeRequestSubject,
		Body:    CollegeRequestBody(req),
	})
}

// Recipient returns the administrator address requests are sent to.
func (n *CollegeRequestNotifier) Recipient() string {
	return n.to
}
