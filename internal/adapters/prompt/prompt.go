// Package prompt builds the per-sentence analysis prompts.
package prompt

import "fmt"

const baseRules = `
You are a precise JSON generator.
STRICT RULES:
1. Your output MUST be a single, valid JSON object.
2. Do NOT use Markdown code blocks (` + "```json ... ```" + `) in your final output.
3. Use ONLY standard ASCII punctuation.
4. Do NOT include any text outside the JSON object.
`

const krRules = `
Task: Analyze the Korean sentence below.
1.  TRANSLATION: Provide a natural English translation of the entire sentence.
2.  TOKENIZATION: Split into morphemes.
    - CRITICAL: Do NOT decompose Hangul characters (Jamo).
    - CRITICAL: Do NOT discard punctuation. Output punctuation as separate blocks with pos 'punctuation'.
3.  POS Tagging (Strictly use these tags only):
    - noun, pronoun, verb, adjective, adverb, particle, ending, punctuation, unknown.
4.  DEFINITION: Provide a concise English definition for each block.
5.  CHINESE ROOT: For Sino-Korean words, providing 'chinese_root' is MANDATORY.
`

const krExample = `
Example Output:
{
    "translation": "I go to school.",
    "blocks": [
        { "text": "학교", "pos": "noun", "definition": "school", "chinese_root": "学校", "grammar_note": null },
        { "text": "에", "pos": "particle", "definition": "to (indicates direction)", "chinese_root": null, "grammar_note": "Location marker" },
        { "text": "갑니다", "pos": "verb", "definition": "go", "chinese_root": null, "grammar_note": "Formal, present tense" },
        { "text": ".", "pos": "punctuation", "definition": ".", "chinese_root": null, "grammar_note": null }
    ]
}
`

const ruRules = `
You are an expert Russian linguist who ALWAYS follows JSON formatting rules.

Task: Analyze the Russian sentence below.

CRITICAL, NON-NEGOTIABLE RULES:
1.  **GRAMMAR NOTE (MANDATORY!)**: For EVERY word block, you MUST provide a detailed 'grammar_note'. This is the most important instruction. Do not skip it or leave it null (except for punctuation).
    -   For **Nouns, Pronouns, Adjectives**: MUST specify ` + "`Case`, `Number`, `Gender`" + `.
    -   For **Verbs**: MUST specify its ` + "`Lemma`" + ` (infinitive form), ` + "`Aspect`" + ` (Perfective/Imperfective), ` + "`Tense`, `Person`, and `Number`" + `.
2.  **LEMMATIZATION**: Identify the base/dictionary form (lemma) of each word. The definition should be for the lemma.
3.  **TRANSLATION**: Provide a natural English translation of the entire sentence.
4.  **TOKENIZATION**: Split into words and punctuation. Punctuation marks are separate blocks.
5.  **POS TAGGING**: Use standard tags (e.g., noun, verb, adj, adv, pron, prep, conj, particle, punctuation).
`

const ruExample = `
Example Output (Follow this structure EXACTLY):
{
    "translation": "I am reading an interesting book.",
    "blocks": [
        { "text": "Я", "pos": "pron", "definition": "I", "grammar_note": "Case: Nominative, Person: 1st, Number: Singular" },
        { "text": "читаю", "pos": "verb", "definition": "read", "grammar_note": "Lemma: читать, Aspect: Imperfective, Tense: Present, Person: 1st, Number: Singular" },
        { "text": "интересную", "pos": "adj", "definition": "interesting", "grammar_note": "Lemma: интересный, Case: Accusative, Number: Singular, Gender: Feminine" },
        { "text": "книгу", "pos": "noun", "definition": "book", "grammar_note": "Lemma: книга, Case: Accusative, Number: Singular, Gender: Feminine, Animacy: Inanimate" },
        { "text": ".", "pos": "punctuation", "definition": ".", "grammar_note": null }
    ]
}
`

// Build assembles the analysis prompt for one sentence. Korean ("KR") and
// Russian ("RU") get language-specific rules; Russian is the fallback.
func Build(lang, sentence string) string {
	rules, example := ruRules, ruExample
	if lang == "KR" {
		rules, example = krRules, krExample
	}
	return fmt.Sprintf("%s\n%s\n%s\nSentence: %q\nOutput:", baseRules, rules, example, sentence)
}
