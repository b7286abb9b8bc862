// Command main runs the database seeder.
package main

import (
	"context"
	"flag"
	"log"

	"gratitude/internal/bootstrap"
	"gratitude/internal/config"
	"gratitude/internal/seed"
)

func main() {
	counts := seed.DefaultCounts
	flag.IntVar(&counts.Users, "users", counts.Users, "Number of users to create")
	flag.IntVar(&counts.Companies, "companies", counts.Companies, "Number of companies to create")
	flag.IntVar(&counts.Thanks, "thanks", counts.Thanks, "Number of thanks to create")
	flag.IntVar(&counts.MaxLikes, "max-likes", counts.MaxLikes, "Maximum likes per thanks")
	flag.IntVar(&counts.MaxComments, "max-comments", counts.MaxComments, "Maximum comments per thanks")
	flag.IntVar(&counts.Follows, "follows", counts.Follows, "Follow edges per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	days := flag.Int("days", 60, "Spread creation times over this many days")
	pending := flag.Float64("pending", 0.1, "Share of thanks and comments left unapproved")
	fast := flag.Bool("fast", false, "Use the minimum bcrypt cost")
	dryRun := flag.Bool("dry-run", false, "Generate without writing")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d companies, %d thanks, clean=%v\n", counts.Users, counts.Companies, counts.Thanks, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = rt.Close(context.Background()) }()

	s := seed.NewSeeder(rt.DB, seed.Options{
		MaxDays:      *days,
		SkipBcrypt:   *fast,
		DryRun:       *dryRun,
		PendingRatio: *pending,
	})

	if *shouldClean && !*dryRun {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(counts)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Done: %d users, %d companies, %d thanks, %d likes, %d comments, %d follows",
		sum.Users, sum.Companies, sum.Thanks, sum.Likes, sum.Comments, sum.Follows)
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
