package repository

const (
	createAnnotationQuery = `INSERT INTO annotations (job_id, video_path, audio_path, transcription, captions, video_s3_key, audio_s3_key)
					VALUES ($1, $2, $3, $4, $5, $6, $7)
					ON CONFLICT (job_id) DO NOTHING
					RETURNING id, job_id, video_path, audio_path, transcription, captions, video_s3_key, audio_s3_key, created_at`
	getAnnotationByIDQuery = `SELECT id, job_id, video_path, audio_path, transcription, captions, video_s3_key, audio_s3_key, created_at
					FROM annotations WHERE id = $1`
	getAnnotationByJobIDQuery = `SELECT id, job_id, video_path, audio_path, transcription, captions, video_s3_key, audio_s3_key, created_at
					FROM annotations WHERE job_id = $1`
)
