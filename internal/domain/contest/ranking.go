package contest

import "sort"

// Rank sorts participants by vote count descending. Ties break by entry
// number ascending, so the earlier entry ranks higher. The input is not
// modified; the reveal sequence depends on holding a ranking that does not
// shift under late-arriving votes.
func Rank(participants []Participant) []Participant {
	ranked := make([]Participant, len(participants))
	copy(ranked, participants)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Votes != ranked[j].Votes {
			return ranked[i].Votes > ranked[j].Votes
		}
		return ranked[i].EntryNumber < ranked[j].EntryNumber
	})

	return ranked
}

// Podium returns the top three of a ranked list, or fewer when fewer
// participants exist. Index 0 is the champion.
func Podium(ranked []Participant) []Participant {
	if len(ranked) > 3 {
		return ranked[:3]
	}
	return ranked
}

// TotalVotes sums the denormalized vote counts across participants.
func TotalVotes(participants []Participant) int {
	total := 0
	for _, p := range participants {
		total += p.Votes
	}
	return total
}
