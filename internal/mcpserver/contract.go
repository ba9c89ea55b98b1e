package mcpserver

// EntryFormatContract describes the canonical org entry format that LLM
// consumers should follow when creating or updating entries.
const EntryFormatContract = `# Wiki Entry Format Contract

Every org entry stored in the wiki MUST follow this structure.

## Structure

` + "```" + `org
#+TITLE: topic-name
#+KEYWORDS: keyword-one keyword-two

* Heading

Body text in org markup.

Use [[wiki:other-topic.org]] to reference other entries, or
[[wiki:other-topic.org][display text]] for a custom label.
` + "```" + `

## Rules

1. **The TITLE line comes first.** It repeats the topic (the file name
   without the ` + "`" + `.org` + "`" + ` extension).
2. **The KEYWORDS line comes second.** Keywords are space-separated,
   lowercase, and used for filtering; the line may be empty.
3. **A blank line separates the header from the body.**
4. **Wiki links** use the ` + "`" + `wiki:` + "`" + ` scheme and carry the target
   file name including the extension: ` + "`" + `[[wiki:topic.org]]` + "`" + `.
5. **Entries live directly in the wiki directory.** No subdirectories:
   nested files are invisible to the wiki.
6. **File names** end with ` + "`" + `.org` + "`" + ` and contain no path separators.
7. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `org
#+TITLE: rust-notes
#+KEYWORDS: rust systems

* Ownership

Borrowing rules are covered in [[wiki:memory-models.org][memory models]].
` + "```" + `
`
