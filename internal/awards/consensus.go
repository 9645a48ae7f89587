package awards

// Evaluate derives the award status from the complete review set. While any
// review is pending, or there are no reviews, current is kept. Otherwise any
// rejection requests revision and unanimous approval approves. The result
// does not depend on the order of reviews.
func Evaluate(current Status, reviews []Review) Status {
	if len(reviews) == 0 {
		return current
	}

	rejected := false
	for _, r := range reviews {
		switch r.Status {
		case ReviewPending:
			return current
		case ReviewRejected:
			rejected = true
		}
	}

	if rejected {
		return StatusRevisionRequested
	}
	return StatusApproved
}
