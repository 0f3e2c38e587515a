package mailer

import (
	logrus "github.com/sirupsen/logrus"
)

// Queue decouples mail delivery from the request/response cycle. Jobs are
// handed to a single worker goroutine through a buffered channel; a full
// queue drops the job with a log line rather than blocking a request.
type Queue struct {
	sender Sender
	jobs   chan func(Sender) error
	done   chan struct{}
}

// NewQueue starts the delivery worker.
func NewQueue(sender Sender) *Queue {
	q := &Queue{
		sender: sender,
		jobs:   make(chan func(Sender) error, 64),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for job := range q.jobs {
		if err := job(q.sender); err != nil {
			logrus.WithError(err).Error("mail delivery failed")
		}
	}
}

// Close drains pending jobs and stops the worker.
func (q *Queue) Close() {
	close(q.jobs)
	<-q.done
}

func (q *Queue) enqueue(job func(Sender) error) {
	select {
	case q.jobs <- job:
	default:
		logrus.Warn("mail queue full, dropping notification")
	}
}

func (q *Queue) SendConfirmation(toEmail, token string) error {
	q.enqueue(func(s Sender) error { return s.SendConfirmation(toEmail, token) })
	return nil
}

func (q *Queue) SendReset(toEmail, token string) error {
	q.enqueue(func(s Sender) error { return s.SendReset(toEmail, token) })
	return nil
}

func (q *Queue) SendSubmissionAlert(initiativeName string) error {
	q.enqueue(func(s Sender) error { return s.SendSubmissionAlert(initiativeName) })
	return nil
}
