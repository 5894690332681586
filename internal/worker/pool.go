package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/repository"
	"tigerengage-backend/internal/services"
)

// Pool consumes feedback jobs queued when a question stops collecting
// answers and writes the generated summary. The jobs are best effort: a
// failed job never touches the question's lifecycle flags.
type Pool struct {
	redis        *redis.Client
	feedback     *services.FeedbackService
	questionRepo *repository.QuestionRepo
	answerRepo   *repository.AnswerRepo
	summaryRepo  *repository.SummaryRepo
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewPool(
	redisClient *redis.Client,
	feedback *services.FeedbackService,
	questionRepo *repository.QuestionRepo,
	answerRepo *repository.AnswerRepo,
	summaryRepo *repository.SummaryRepo,
	workerCount int,
) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		redis:        redisClient,
		feedback:     feedback,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		summaryRepo:  summaryRepo,
		workerCount:  workerCount,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.worker(id)
		}(i)
	}

	log.Printf("Started %d feedback worker goroutines", p.workerCount)
}

// Stop cancels the pool's context, unblocking any worker waiting in BLPOP,
// and waits for the workers to return. A job already being processed runs to
// completion.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	for {
		// BLPOP on the pool context so Stop interrupts the wait
		result, err := p.redis.BLPop(p.ctx, 30*time.Second, services.FeedbackQueue).Result()
		if err != nil {
			if p.ctx.Err() != nil {
				log.Printf("Worker %d shutting down", id)
				return
			}
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.FeedbackJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse feedback job: %v", id, err)
			continue
		}

		// Process on a fresh context so a shutdown lets a popped job finish
		ctx := context.Background()

		// Try to acquire lock so one deactivation yields one summary
		lockKey := fmt.Sprintf("feedback_lock:%s", job.QuestionID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this question
		}

		log.Printf("Worker %d: summarizing answers for question %s", id, job.QuestionID)

		if err := p.processFeedback(ctx, &job); err != nil {
			p.handleFailure(&job, err)
		} else {
			log.Printf("Worker %d: summary stored for question %s", id, job.QuestionID)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processFeedback(ctx context.Context, job *models.FeedbackJob) error {
	question, err := p.questionRepo.GetByID(ctx, job.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to get question: %w", err)
	}

	answers, err := p.answerRepo.ListByQuestion(ctx, job.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to list answers: %w", err)
	}

	summary := &models.AnswerSummary{QuestionID: job.QuestionID}

	if len(answers) == 0 {
		summary.Text = "No answers were submitted for this question."
		return p.summaryRepo.Upsert(ctx, summary)
	}

	texts := make([]string, len(answers))
	for i, a := range answers {
		texts[i] = a.Text
	}

	genCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	text, notes, err := p.feedback.SummarizeAnswers(genCtx, question.Text, question.CorrectAnswer, texts)
	if err != nil {
		return fmt.Errorf("failed to summarize answers: %w", err)
	}

	summary.Text = text
	summary.Notes = notes
	return p.summaryRepo.Upsert(ctx, summary)
}

func (p *Pool) handleFailure(job *models.FeedbackJob, err error) {
	job.RetryCount++
	if job.RetryCount >= 3 {
		log.Printf("Feedback job for question %s failed permanently: %v", job.QuestionID, err)
		return
	}

	log.Printf("Feedback job for question %s failed (attempt %d): %v, retrying", job.QuestionID, job.RetryCount, err)

	// Re-queue after backoff
	jobBytes, _ := json.Marshal(job)
	backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
	time.AfterFunc(backoff, func() {
		p.redis.LPush(context.Background(), services.FeedbackQueue, string(jobBytes))
	})
}
