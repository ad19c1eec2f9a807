package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/internal/repository"
	"github.com/jwalitptl/procurement-api/pkg/besteffort"
	"github.com/jwalitptl/procurement-api/pkg/logger"
	"github.com/jwalitptl/procurement-api/pkg/messaging"
	"github.com/jwalitptl/procurement-api/pkg/metrics"
)

// ChannelPrefix prefixes the per-user pub/sub channel new notifications are pushed to
const ChannelPrefix = "notifications:"

// Recipient is either a single user or every user holding one of a set of roles
type Recipient struct {
	userID uuid.UUID
	roles  []model.Role
}

func Single(userID uuid.UUID) Recipient {
	return Recipient{userID: userID}
}

func RoleSet(roles ...model.Role) Recipient {
	return Recipient{roles: roles}
}

type Service struct {
	repo      repository.NotificationRepository
	users     repository.UserRepository
	publisher messaging.Publisher
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(repo repository.NotificationRepository, users repository.UserRepository, publisher messaging.Publisher,
	log *logger.Logger, m *metrics.Metrics) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		users:     users,
		publisher: publisher,
		log:       log.Named("notifications"),
		metrics:   m,
		now:       time.Now,
	}
}

// Notify returns the unread notification matching (userID, type, message) if
// there is one, otherwise it stores and publishes a new unread notification.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, notificationType, message string) (*model.Notification, error) {
	existing, err := s.repo.FindUnread(ctx, userID, notificationType, message)
	if err != nil {
		return nil, fmt.Errorf("failed to look up notification: %w", err)
	}
	if existing != nil {
		if s.metrics != nil {
			s.metrics.NotificationsDeduplicated.Inc()
		}
		return existing, nil
	}

	n := &model.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notificationType,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	if s.metrics != nil {
		s.metrics.NotificationsCreated.WithLabelValues(notificationType).Inc()
	}

	besteffort.Run(ctx, s.log, "publish notification", func(ctx context.Context) error {
		return s.publisher.Publish(ctx, ChannelPrefix+userID.String(), model.NotificationEvent{
			NotificationID: n.ID,
			UserID:         n.UserID,
			Type:           n.Type,
			Message:        n.Message,
			CreatedAt:      n.CreatedAt,
		})
	}, "notification_id", n.ID.String(), "user_id", userID.String())

	return n, nil
}

// Fanout notifies every user behind to. Errors are logged and never returned.
// It reports how many users were notified.
func (s *Service) Fanout(ctx context.Context, to Recipient, notificationType, message string) int {
	var userIDs []uuid.UUID

	if len(to.roles) == 0 {
		userIDs = []uuid.UUID{to.userID}
	} else {
		ok := besteffort.Run(ctx, s.log, "resolve notification recipients", func(ctx context.Context) error {
			users, err := s.users.ListByRoles(ctx, to.roles...)
			if err != nil {
				return err
			}
			for _, u := range users {
				userIDs = append(userIDs, u.ID)
			}
			return nil
		}, "type", notificationType)
		if !ok {
			return 0
		}
	}

	delivered := 0
	for _, id := range userIDs {
		id := id
		if besteffort.Run(ctx, s.log, "notify user", func(ctx context.Context) error {
			_, err := s.Notify(ctx, id, notificationType, message)
			return err
		}, "user_id", id.String(), "type", notificationType) {
			delivered++
		}
	}
	return delivered
}

// ItemCreated tells the assignee, or every admin and manager when the item is unassigned
func (s *Service) ItemCreated(ctx context.Context, item *model.Item) {
	if item.AssignedTo != nil {
		s.ItemAssigned(ctx, item)
		return
	}

	msg := fmt.Sprintf("New item %q was added", item.Name)
	if item.ProjectName != "" {
		msg = fmt.Sprintf("New item %q was added to project %q", item.Name, item.ProjectName)
	}
	s.Fanout(ctx, RoleSet(model.RoleAdmin, model.RoleManager), model.NotificationItemCreated, msg)
}

// ItemAssigned tells the item's assignee
func (s *Service) ItemAssigned(ctx context.Context, item *model.Item) {
	if item.AssignedTo == nil {
		return
	}
	s.Fanout(ctx, Single(*item.AssignedTo), model.NotificationItemAssigned,
		fmt.Sprintf("You have been assigned to item %q", item.Name))
}

// ProjectCreated tells every admin and manager
func (s *Service) ProjectCreated(ctx context.Context, project *model.Project) {
	s.Fanout(ctx, RoleSet(model.RoleAdmin, model.RoleManager), model.NotificationProjectCreated,
		fmt.Sprintf("New project %q was created", project.Name))
}

// ManagersUpdated notifies managers present in newIDs but not oldIDs. The actor
// gets a confirmation unless they added themselves.
func (s *Service) ManagersUpdated(ctx context.Context, project *model.Project, actorID uuid.UUID, oldIDs, newIDs []uuid.UUID) {
	added := AddedManagers(oldIDs, newIDs)
	if len(added) == 0 {
		return
	}

	actorAdded := false
	for _, id := range added {
		if id == actorID {
			actorAdded = true
		}
		s.Fanout(ctx, Single(id), model.NotificationAssignedManager,
			fmt.Sprintf("You have been assigned as a manager of project %q", project.Name))
	}

	if !actorAdded && actorID != uuid.Nil {
		s.Fanout(ctx, Single(actorID), model.NotificationAssignedManagerAction,
			fmt.Sprintf("You assigned %d manager(s) to project %q", len(added), project.Name))
	}
}

// AddedManagers returns the ids in newIDs missing from oldIDs, in order and without repeats
func AddedManagers(oldIDs, newIDs []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(oldIDs)+len(newIDs))
	for _, id := range oldIDs {
		seen[id] = struct{}{}
	}

	var added []uuid.UUID
	for _, id := range newIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		added = append(added, id)
	}
	return added
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, p model.Pagination) ([]*model.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
