// Command main runs the database seeder for CampusHub.
package main

import (
	"flag"
	"log"

	"campushub/internal/config"
	"campushub/internal/database"
	"campushub/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	numCircles := flag.Int("circles", 10, "Number of circles to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numDMs := flag.Int("dms", 30, "Number of DM threads to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	presetPath := flag.String("preset", "", "YAML preset file; overrides the count flags")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *presetPath != "" {
		preset, err := seed.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		log.Printf("Applying preset %q: %d users, %d circles, %d posts, %d DM threads\n",
			preset.Name, preset.Users, preset.Circles, preset.Posts, preset.DMThreads)
		if err := seed.Apply(db, preset); err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
		log.Println("All done! Your database is now populated with test data.")
		return
	}

	log.Printf("Target: %d users, %d circles, %d posts, %d DM threads, clean=%v\n",
		*numUsers, *numCircles, *numPosts, *numDMs, *shouldClean)

	s := seed.NewSeeder(db, seed.Options{})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := seed.Channels(db); err != nil {
		log.Fatalf("Built-in channel seeding failed: %v", err)
	}

	users, err := s.SeedSocialMesh(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	if _, err := s.SeedCircles(users, *numCircles); err != nil {
		log.Fatalf("Circle seeding failed: %v", err)
	}
	if _, err := s.SeedEngagement(users, *numPosts); err != nil {
		log.Fatalf("Engagement seeding failed: %v", err)
	}
	if err := s.SeedDMs(users, *numDMs); err != nil {
		log.Fatalf("DM seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Println("All test users have the password: password123")
}
