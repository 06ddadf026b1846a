package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/videotube/internal/models"
)

// GetWatchHistory раскрывает историю просмотров пользователя в список видео.
//
// Порядок соответствует сохранённой последовательности, повторно просмотренное видео
// встречается один раз (на первой позиции), неизвестные идентификаторы пропускаются.
// Возвращает ErrUserNotFound, если пользователя нет.
func (s *Storage) GetWatchHistory(ctx context.Context, userUID string) ([]models.WatchedVideo, error) {
	const op = "storage.GetWatchHistory"

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE uid = $1)`, userUID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	query := `
		WITH history AS (
			SELECT h.video_uid, MIN(h.position) AS position
			FROM users u
			CROSS JOIN LATERAL unnest(u.watch_history) WITH ORDINALITY AS h(video_uid, position)
			WHERE u.uid = $1
			GROUP BY h.video_uid
		)
		SELECT v.uid, v.video_file, v.thumbnail, v.title, v.description, v.duration, v.views,
		       v.is_published, v.created_at, v.updated_at,
		       o.uid, o.full_name, o.username, o.avatar
		FROM history
		JOIN videos v ON v.uid = history.video_uid
		LEFT JOIN users o ON o.uid = v.owner_uid
		ORDER BY history.position`

	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.WatchedVideo{}
	for rows.Next() {
		var v models.WatchedVideo
		var ownerUID, ownerFullName, ownerUsername, ownerAvatar sql.NullString
		if err := rows.Scan(&v.UUID, &v.VideoFile, &v.Thumbnail, &v.Title, &v.Description,
			&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
			&ownerUID, &ownerFullName, &ownerUsername, &ownerAvatar); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ownerUID.Valid {
			v.Owner = &models.VideoOwner{
				UUID:     ownerUID.String,
				FullName: ownerFullName.String,
				Username: ownerUsername.String,
				Avatar:   ownerAvatar.String,
			}
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
