package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"interview-trainer/internal/interview"
)

// CreateJobProfile сохраняет профиль вакансии и возвращает его с присвоенным ID
func (s *Store) CreateJobProfile(ctx context.Context, profile *interview.JobProfile) (*interview.JobProfile, error) {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}

	skills, err := json.Marshal(profile.Skills)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal skills")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO job_profile (id, title, description, skills, years_experience, resume_text, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Title, profile.Description, string(skills),
		profile.YearsExperience, profile.ResumeText, time.Now().Unix())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create job profile")
	}

	return profile, nil
}

// GetJobProfile загружает профиль вакансии по ID
func (s *Store) GetJobProfile(ctx context.Context, id string) (*interview.JobProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, skills, years_experience, resume_text
		FROM job_profile WHERE id = ?`, id)

	var profile interview.JobProfile
	var skills string
	if err := row.Scan(&profile.ID, &profile.Title, &profile.Description,
		&skills, &profile.YearsExperience, &profile.ResumeText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Errorf("job profile %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to get job profile")
	}

	if err := json.Unmarshal([]byte(skills), &profile.Skills); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal skills")
	}

	return &profile, nil
}

// LatestJobProfile возвращает последний созданный профиль вакансии
func (s *Store) LatestJobProfile(ctx context.Context) (*interview.JobProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id FROM job_profile ORDER BY created_ts DESC LIMIT 1`)

	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("no job profile found")
		}
		return nil, errors.Wrap(err, "failed to get latest job profile")
	}

	return s.GetJobProfile(ctx, id)
}

// CreateInterviewRecord создает запись интервью в статусе in_progress
func (s *Store) CreateInterviewRecord(ctx context.Context, record *InterviewRecord) (*InterviewRecord, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Status == "" {
		record.Status = interview.StatusInProgress
	}
	record.CreatedAt = time.Now()

	responses, err := json.Marshal(record.Responses)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal responses")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interview_record
			(id, user_id, job_profile_id, level, language, voice_agent_id, status, tokens_used, responses, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.JobProfileID, record.Level,
		record.Language, record.VoiceAgentID, record.Status,
		record.TokensUsed, string(responses), record.CreatedAt.Unix())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create interview record")
	}

	return record, nil
}

// UpdateInterviewRecord обновляет запись при финализации сессии
func (s *Store) UpdateInterviewRecord(ctx context.Context, id string, status interview.Status, score *int, tokensUsed int, completedAt *time.Time, responses []RecordResponse) error {
	data, err := json.Marshal(responses)
	if err != nil {
		return errors.Wrap(err, "failed to marshal responses")
	}

	var completedTS interface{}
	if completedAt != nil {
		completedTS = completedAt.Unix()
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE interview_record
		SET status = ?, score = ?, tokens_used = ?, responses = ?, completed_ts = ?
		WHERE id = ?`,
		status, score, tokensUsed, string(data), completedTS, id)
	if err != nil {
		return errors.Wrap(err, "failed to update interview record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if affected == 0 {
		return errors.Errorf("interview record %s not found", id)
	}

	return nil
}

// DeleteInterviewRecord удаляет запись интервью (используется при Retake)
func (s *Store) DeleteInterviewRecord(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM interview_record WHERE id = ?`, id)
	return errors.Wrap(err, "failed to delete interview record")
}

// ListInterviewRecords возвращает записи пользователя, новые первыми
func (s *Store) ListInterviewRecords(ctx context.Context, userID string) ([]*InterviewRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, job_profile_id, level, language, voice_agent_id,
			status, score, tokens_used, responses, created_ts, completed_ts
		FROM interview_record WHERE user_id = ? ORDER BY created_ts DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list interview records")
	}
	defer rows.Close()

	var records []*InterviewRecord
	for rows.Next() {
		var rec InterviewRecord
		var responses string
		var createdTS int64
		var completedTS sql.NullInt64
		var score sql.NullInt64

		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.JobProfileID, &rec.Level,
			&rec.Language, &rec.VoiceAgentID, &rec.Status, &score,
			&rec.TokensUsed, &responses, &createdTS, &completedTS); err != nil {
			return nil, errors.Wrap(err, "failed to scan interview record")
		}

		if score.Valid {
			v := int(score.Int64)
			rec.Score = &v
		}
		rec.CreatedAt = time.Unix(createdTS, 0)
		if completedTS.Valid {
			t := time.Unix(completedTS.Int64, 0)
			rec.CompletedAt = &t
		}
		if err := json.Unmarshal([]byte(responses), &rec.Responses); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal responses")
		}

		records = append(records, &rec)
	}

	return records, rows.Err()
}

// UpdateProfileUsage накапливает расход токенов и число завершенных интервью
func (s *Store) UpdateProfileUsage(ctx context.Context, userID, planID string, tokensUsed, interviewsCompleted int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_usage (user_id, plan_id, tokens_used, interviews_completed, updated_ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			plan_id = excluded.plan_id,
			tokens_used = profile_usage.tokens_used + excluded.tokens_used,
			interviews_completed = profile_usage.interviews_completed + excluded.interviews_completed,
			updated_ts = excluded.updated_ts`,
		userID, planID, tokensUsed, interviewsCompleted, time.Now().Unix())
	return errors.Wrap(err, "failed to update profile usage")
}

// GetProfileUsage возвращает накопленный расход пользователя.
// Для нового пользователя возвращает нулевой расход.
func (s *Store) GetProfileUsage(ctx context.Context, userID string) (*ProfileUsage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, plan_id, tokens_used, interviews_completed, updated_ts
		FROM profile_usage WHERE user_id = ?`, userID)

	var usage ProfileUsage
	var updatedTS int64
	if err := row.Scan(&usage.UserID, &usage.PlanID, &usage.TokensUsed,
		&usage.InterviewsCompleted, &updatedTS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &ProfileUsage{UserID: userID}, nil
		}
		return nil, errors.Wrap(err, "failed to get profile usage")
	}

	usage.UpdatedAt = time.Unix(updatedTS, 0)
	return &usage, nil
}
