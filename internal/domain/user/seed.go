package user

// DefaultSeed returns the records a fresh registry starts with.
// The first id issued afterwards is NextIDAfter(DefaultSeed()), i.e. 3.
func DefaultSeed() []User {
	return []User{
		{ID: 1, Name: "John Doe", Email: "john@example.com"},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com"},
	}
}

// NextIDAfter returns the smallest id greater than every id in seed, and at least 1.
func NextIDAfter(seed []User) int64 {
	var next int64 = 1
	for _, u := range seed {
		if u.ID >= next {
			next = u.ID + 1
		}
	}
	return next
}
