// Command kith-datagen emits a synthetic friendship edge file in the
// tab-separated input format: source, target, weight. Adjacency downstream is
// undirected, so each friendship is written once.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
)

func main() {
	var (
		outputFile string
		users      int
		avgFriends int
		seed       int64
	)

	flag.StringVar(&outputFile, "out", "", "Write edges to file instead of stdout")
	flag.IntVar(&users, "users", 1000, "Number of users in the graph")
	flag.IntVar(&avgFriends, "avg-friends", 10, "Average friendships per user")
	flag.Int64Var(&seed, "seed", 42, "Random seed, for reproducible graphs")
	flag.Parse()

	if users < 2 {
		log.Fatalf("need at least 2 users, got %d", users)
	}
	if avgFriends < 1 || avgFriends >= users {
		log.Fatalf("avg-friends must be in [1, users), got %d", avgFriends)
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := generate(out, users, avgFriends, seed); err != nil {
		log.Fatalf("Failed to generate edges: %v", err)
	}
}

// generate produces users*avgFriends/2 distinct friendships. Partner choice
// is skewed toward low user numbers so the graph has hubs rather than
// uniform degree, which yields a more interesting two-hop structure.
func generate(out *os.File, users, avgFriends int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	w := bufio.NewWriter(out)

	type pair struct{ a, b int }
	seen := make(map[pair]struct{})
	target := users * avgFriends / 2

	for len(seen) < target {
		a := rng.Intn(users)
		b := skewed(rng, users)
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		p := pair{a, b}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		weight := 1 + rng.Intn(100)
		fmt.Fprintf(w, "user%d\tuser%d\t%d\n", a, b, weight)
	}

	return w.Flush()
}

// skewed picks a user with probability weighted toward lower numbers.
func skewed(rng *rand.Rand, users int) int {
	a := rng.Intn(users)
	b := rng.Intn(users)
	if b < a {
		return b
	}
	return a
}
