package lesson

// Seed returns the built-in psychoeducation curriculum, inserted at startup
// if missing.
func Seed() []Lesson {
	return []Lesson{
		{
			ID:       "ifs-welcome",
			Title:    "Welcome to Parts Work",
			Summary:  "What Internal Family Systems is and what it is not.",
			Body:     "Internal Family Systems sees the mind as a family of parts led by a calm, curious Self. Nothing inside you is an enemy: every part took its job to protect you. This course walks through meeting your parts with curiosity instead of judgment.",
			Ordering: 1,
		},
		{
			ID:       "ifs-protectors",
			Title:    "Managers and Firefighters",
			Summary:  "The two kinds of protective parts and how to recognize them.",
			Body:     "Managers work ahead of time: planning, criticizing, perfecting, keeping pain from being triggered. Firefighters react after the alarm sounds: distraction, numbing, anger. Both protect exiles. When you notice a protector this week, write down what it seems afraid would happen if it relaxed.",
			Ordering: 2,
		},
		{
			ID:       "ifs-exiles",
			Title:    "Exiles and Burdens",
			Summary:  "Why some parts carry old pain and stay hidden.",
			Body:     "Exiles are young parts holding memories and feelings that once overwhelmed you. Protectors keep them out of awareness, which also keeps them frozen in time. You never force an exile open: you earn trust from its protectors first, usually with your therapist present.",
			Ordering: 3,
		},
		{
			ID:       "ifs-self-energy",
			Title:    "The 8 Cs of Self",
			Summary:  "Curiosity, calm, compassion and the other qualities of Self.",
			Body:     "Self is not another part: it is who is there when parts give space. You can recognize Self-energy by the 8 Cs: curiosity, calm, clarity, compassion, confidence, courage, creativity, connectedness. Before journaling, take three slow breaths and ask your parts for a little room.",
			Ordering: 4,
		},
		{
			ID:       "ifs-unblending",
			Title:    "Unblending in Daily Life",
			Summary:  "Noticing when a part has taken over, and stepping back.",
			Body:     "When a feeling says \"I am angry\" rather than \"a part of me is angry\", you are blended. Unblending starts with noticing where the feeling lives in your body, naming the part, and asking it to soften just enough that you can be with it instead of being it.",
			Ordering: 5,
		},
	}
}
