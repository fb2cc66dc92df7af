// Package catalog holds the static challenge content: hint text per cipher and
// the seed pool. Ciphertexts are precomputed; nothing here encrypts.
package catalog

import "decryptrace/internal/model"

// SyntheticID identifies the in-memory message handed out when storage is unreachable
const SyntheticID = "fallback-1"

var hints = map[model.EncryptionType]string{
	model.EncryptionCaesar:  "Each letter has been shifted forward in the alphabet.",
	model.EncryptionBase64:  "Look for patterns of letters, numbers, and possibly + or / symbols.",
	model.EncryptionMorse:   "Dots and dashes hide the true message.",
	model.EncryptionBinary:  "Only two symbols are used in this encoding.",
	model.EncryptionReverse: "Try reading this message from the opposite direction.",
	model.EncryptionMixed:   "Multiple encryption techniques have been applied. Peel back one layer at a time.",
	model.EncryptionROT13:   "Rotate every letter halfway around the alphabet.",
	model.EncryptionHex:     "Pairs of hexadecimal digits each stand for one character.",
	model.EncryptionAtbash:  "The alphabet has been flipped: A becomes Z, B becomes Y.",
	model.EncryptionMD5:     "This one is a one-way hash. Guess the short plaintext.",
}

const genericHint = "Look closely at the pattern of characters."

// Hint returns the stock hint for a cipher tag
func Hint(t model.EncryptionType) string {
	if h, ok := hints[t]; ok {
		return h
	}
	return genericHint
}

// HintFor prefers the message's own hint and falls back to the stock one
func HintFor(m *model.EncryptedMessage) string {
	if m.Hint != "" {
		return m.Hint
	}
	return Hint(m.EncryptionType)
}

type seed struct {
	plain, cipher string
	kind          model.EncryptionType
	hint          string
	difficulty    model.Difficulty
}

var pool = []seed{
	{"This is a test", "Wklv lv d whvw", model.EncryptionCaesar,
		"Imagine your keyboard got drunk and shifted every letter three places forward.", model.DifficultyEasy},
	{"Hi", "01001000 01101001", model.EncryptionBinary,
		"Robots use this language. You see 0s and 1s, but they see words.", model.DifficultyMedium},
	{"Something secret", "U29tZXRoaW5nIHNlY3JldA==", model.EncryptionBase64,
		"This message took a vacation and got sunburned in Base64.", model.DifficultyMedium},
	{"The code is 13", "Gur pbqr vf 13", model.EncryptionROT13,
		"Move each letter 13 places and you'll see the secret.", model.DifficultyMedium},
	{"coding in This and have no idea", "xlwrmt rm Gsrh zmw szev ml rwvz", model.EncryptionAtbash,
		"Flip the alphabet! A = Z, B = Y, like reversing your car into a parking spot.", model.DifficultyHard},
	{"Good Luck", "47 6f 6f 64 20 4c 75 63 6b", model.EncryptionHex,
		"Numbers in disguise! Convert these sneaky hex codes to text.", model.DifficultyMedium},
	{"Hello, my name is Vishal", "Khoor, pb qdph lv Ylvkdo", model.EncryptionCaesar,
		"Every letter took three steps forward, probably trying to escape the message.", model.DifficultyEasy},
	{"Mind your own business?", "TWluZCB5b3VyIG93biBidXNpbmVzcz8=", model.EncryptionBase64,
		"Base64 strikes again! Looks like a WiFi password, but it's words in disguise.", model.DifficultyMedium},
	{"Hello Friend", "48656c6c6f20467269656e64", model.EncryptionHex,
		"It's just a greeting pretending to be a computer nerd.", model.DifficultyMedium},
	{"Hey there!", "Khb wkhuh!", model.EncryptionCaesar,
		"Imagine someone typing this while wearing boxing gloves. It's all shifted.", model.DifficultyMedium},
	{"Love do not get monsters", "Ybir qb abg trg zbafgref", model.EncryptionROT13,
		"This message is doing a 13-step dance. Spin the letters back 13 places!", model.DifficultyMedium},
	{"There is a secret", "Uifsf jt b tfdsfu", model.EncryptionCaesar,
		"Every letter moved one step forward, like it's shy and trying to avoid you.", model.DifficultyEasy},
	{"Hello World", "Mjqqt Btwqi", model.EncryptionCaesar,
		"If the classic greeting had too much caffeine and jumped five letters forward.", model.DifficultyEasy},
	{"hello", "5d41402abc4b2a76b9719d911017c592", model.EncryptionMD5,
		"If you can reverse this you're probably a hacker. No worries, it's a greeting.", model.DifficultyHard},
	{"Hello, human", "48 65 6c 6c 6f 2c 20 68 75 6d 61 6e", model.EncryptionHex,
		"This message is hiding in hexadecimal. It's basically cosplaying as numbers.", model.DifficultyMedium},
	{"Decode the secret message", "Ghfrgh wkh vhfuhw phvvdjh", model.EncryptionCaesar,
		"Looks scrambled? The letters moved three places ahead.", model.DifficultyMedium},
	{"Hello, Bot! MainProgram", "Mjqqt, Gty! RfnsUwtlwfr", model.EncryptionCaesar,
		"This message is running five steps ahead in the alphabet!", model.DifficultyMedium},
	{"Top secret", "terces poT", model.EncryptionReverse,
		"Read it in the mirror.", model.DifficultyEasy},
}

// SeedMessages returns a fresh copy of the challenge pool with no assignments.
// The first entry carries the legacy active flag.
func SeedMessages() []*model.EncryptedMessage {
	msgs := make([]*model.EncryptedMessage, 0, len(pool))
	for i, s := range pool {
		msgs = append(msgs, &model.EncryptedMessage{
			OriginalText:   s.plain,
			EncryptedText:  s.cipher,
			EncryptionType: s.kind,
			Hint:           s.hint,
			Difficulty:     s.difficulty,
			Active:         i == 0,
			ActiveForTeams: []string{},
		})
	}
	return msgs
}

// DefaultMessage is persisted when the pool has neither entries nor an active message
func DefaultMessage() *model.EncryptedMessage {
	s := pool[0]
	return &model.EncryptedMessage{
		OriginalText:   s.plain,
		EncryptedText:  s.cipher,
		EncryptionType: s.kind,
		Hint:           s.hint,
		Difficulty:     s.difficulty,
		Active:         true,
		ActiveForTeams: []string{},
	}
}

// Synthetic is the never-persisted message of last resort
func Synthetic() *model.EncryptedMessage {
	m := DefaultMessage()
	m.ID = SyntheticID
	return m
}
