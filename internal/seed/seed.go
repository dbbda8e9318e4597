package seed

import (
	"fmt"
	"log"

	"campushub/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	// SkipBcrypt stores plaintext passwords; only for fast local seeding.
	SkipBcrypt bool
	// MaxDays bounds how far in the past seeded content is dated.
	MaxDays int
}

var seedEmojis = []string{"👍", "🎉", "😂", "❤️", "🔥"}

// Seeder populates the database with realistic demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes all seeded content. Postgres only.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE event_attendances, events, direct_messages, conversations,
reactions, comment_likes, likes, comments, posts, courses, channels,
timeline_memberships, timelines, circle_memberships, circles, follows, users
RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// SeedSocialMesh creates users and a follow graph among them.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
		logProgress("users", i)
	}

	// Each user follows a handful of others.
	for _, follower := range users {
		numFollows := s.factory.rng.Intn(6)
		for j := 0; j < numFollows; j++ {
			followed := users[s.factory.rng.Intn(len(users))]
			if followed.ID == follower.ID {
				continue
			}
			// Duplicate edges hit the composite PK; skip quietly.
			_ = s.factory.CreateFollow(follower, followed)
		}
	}

	log.Printf("Seeded %d users with follow graph", len(users))
	return users, nil
}

// SeedCircles creates circles with members, private timelines and events.
func (s *Seeder) SeedCircles(users []*models.User, numCircles int) ([]*models.Circle, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to build circles from")
	}

	circles := make([]*models.Circle, 0, numCircles)
	for i := 0; i < numCircles; i++ {
		leader := users[s.factory.rng.Intn(len(users))]
		circle, err := s.factory.CreateCircle(leader)
		if err != nil {
			return nil, fmt.Errorf("create circle: %w", err)
		}
		circles = append(circles, circle)

		// Fill the circle with a handful of members.
		members := []*models.User{leader}
		numMembers := s.factory.rng.Intn(8) + 2
		for j := 0; j < numMembers; j++ {
			member := users[s.factory.rng.Intn(len(users))]
			if member.ID == circle.LeaderID {
				continue
			}
			if err := s.factory.AddCircleMember(circle, member); err != nil {
				continue
			}
			members = append(members, member)
		}

		// Roughly half the circles carry a private timeline for a subset.
		if s.factory.rng.Float32() < 0.5 && len(members) > 2 {
			subset := members[:len(members)/2+1]
			if _, err := s.factory.CreateTimeline(circle, leader, subset); err != nil {
				return nil, fmt.Errorf("create timeline: %w", err)
			}
		}

		if _, err := s.factory.CreateEvent(circle, leader); err != nil {
			return nil, fmt.Errorf("create event: %w", err)
		}
	}

	log.Printf("Seeded %d circles", len(circles))
	return circles, nil
}

// SeedEngagement creates posts across channels and circles, then layers
// comments, likes and reactions on them.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to create posts for")
	}

	var channels []models.Channel
	if err := s.db.Where("circle_id IS NULL").Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("no global channels; run Channels() first")
	}

	var circles []models.Circle
	if err := s.db.Find(&circles).Error; err != nil {
		return nil, fmt.Errorf("load circles: %w", err)
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		user := users[s.factory.rng.Intn(len(users))]

		var post *models.Post
		var err error
		if len(circles) > 0 && s.factory.rng.Float32() < 0.3 {
			circle := circles[s.factory.rng.Intn(len(circles))]
			post, err = s.factory.CreateCirclePost(user, circle.ID, nil)
		} else {
			channel := channels[s.factory.rng.Intn(len(channels))]
			post, err = s.factory.CreateChannelPost(user, channel.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
		logProgress("posts", i)
	}

	// Engagement: comments, likes and reactions on a random subset.
	for _, post := range posts {
		numComments := s.factory.rng.Intn(4)
		for j := 0; j < numComments; j++ {
			commenter := users[s.factory.rng.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
		}

		numLikes := s.factory.rng.Intn(5)
		for j := 0; j < numLikes; j++ {
			liker := users[s.factory.rng.Intn(len(users))]
			// Unique index on (user, post) rejects duplicates; skip quietly.
			_ = s.factory.CreateLike(liker, post)
		}

		if s.factory.rng.Float32() < 0.4 {
			reactor := users[s.factory.rng.Intn(len(users))]
			emoji := seedEmojis[s.factory.rng.Intn(len(seedEmojis))]
			_ = s.factory.CreateReaction(reactor, post, emoji)
		}
	}

	log.Printf("Seeded %d posts with engagement", len(posts))
	return posts, nil
}

// SeedDMs creates direct-message threads between random user pairs.
func (s *Seeder) SeedDMs(users []*models.User, numThreads int) error {
	if len(users) < 2 {
		return nil
	}
	for i := 0; i < numThreads; i++ {
		a := users[s.factory.rng.Intn(len(users))]
		b := users[s.factory.rng.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		numMessages := s.factory.rng.Intn(6) + 1
		for j := 0; j < numMessages; j++ {
			sender, recipient := a, b
			if j%2 == 1 {
				sender, recipient = b, a
			}
			if _, err := s.factory.CreateDirectMessage(sender, recipient); err != nil {
				return fmt.Errorf("create dm: %w", err)
			}
		}
	}
	return nil
}
