package extraction

// ParsePrompt is the instruction sent alongside every exam PDF. The schema
// constrains the shape; this text constrains the content.
const ParsePrompt = `
You are converting a university exam paper PDF into structured JSON.

Follow these rules strictly:

1. METADATA
- Extract:
  - "course_code": short code such as "CSCI101" or "ENGR2013".
  - "course_name": full course title.
  - "exam_date": exam date in "YYYY-MM-DD" format if possible, otherwise "".
  - "exam_year": four-digit year, e.g. "2024". If unknown, use "".
- If multiple dates appear (e.g. print date vs exam date), choose the one clearly marked as the exam date.

2. QUESTIONS
- Extract ALL questions in exam order.
- Each "question" MUST have:
  - "question_number": the label shown in the paper ("1", "Q1", "Section A - Q1", etc.).
  - "text": full wording of the main question, including any common stem shared by sub-questions.
  - "marks": total marks for this question if clearly indicated, else null.
  - "figures": any diagrams, charts, tables, circuit diagrams, etc. referenced in this question.
  - "equations": any key mathematical expressions used in this question.
  - "sub_questions": each part such as (a), (b), (c), etc.

3. SUB-QUESTIONS
- For each sub-question:
  - "sub_number": the label exactly as in the paper, like "(a)", "(b)", "(i)", "(ii)".
  - "text": the full wording for that sub-question.
  - "marks": marks if shown (e.g. "[5 marks]"), else null.
  - "figures" and "equations": capture any figures or equations specific to that sub-question.

4. FIGURES
- Treat diagrams, graphs, tables, images, and complex schematics as "figures".
- For each figure:
  - "label": use the label if present ("Figure 1", "Table 2"). If there is no explicit label, use a short invented label like "figure_q1a_1".
  - "description": short plain-text description based on the caption or nearby text.

5. EQUATIONS
- For each equation:
  - "latex": convert the visible math into a LaTeX-like string (e.g. "E = mc^2", "\int_a^b f(x) dx").
  - "description": a short explanation if it helps understand the equation, otherwise "".

6. HALLUCINATIONS
- Do NOT invent new questions, figures, or equations.
- If something is partially cut, transcribe as faithfully as you can.
- If a field is missing, use:
  - "" for unknown strings,
  - null for unknown numbers (e.g. marks),
  - [] for empty arrays.

Return ONLY valid JSON that exactly follows the given JSON Schema.
`
