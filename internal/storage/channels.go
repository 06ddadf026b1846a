package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/videotube/internal/models"
)

// GetChannelProfile возвращает профиль канала с числом подписчиков, числом подписок канала
// и признаком подписки зрителя viewerUID. Пустой viewerUID означает анонимного зрителя.
func (s *Storage) GetChannelProfile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error) {
	const op = "storage.GetChannelProfile"

	query := `
		SELECT u.uid, u.full_name, u.username, u.email, u.avatar, u.cover_image,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_uid = u.uid),
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_uid = u.uid),
		       EXISTS (SELECT 1 FROM subscriptions s
		               WHERE s.channel_uid = u.uid AND s.subscriber_uid = $2::uuid)
		FROM users u
		WHERE u.username = $1`

	p := &models.ChannelProfile{}
	err := s.DB.QueryRowContext(ctx, query, username, nullable(viewerUID)).Scan(
		&p.UUID, &p.FullName, &p.Username, &p.Email, &p.Avatar, &p.CoverImage,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return p, nil
}
