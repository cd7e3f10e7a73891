package pipeline

// Prompts for the LLM-backed stages. Kept verbatim as tuned against
// gpt-4o-mini; the headnote example in the short summary prompt anchors the
// style of the South African Law Reports.

const shortSummaryPrompt = `You are an AI specialized in generating South African law headnotes.
Please read the following case text and produce a concise headnote in the style of the South African Law Reports.
The headnote must include only the crucial legal points, a summary of relevant facts, and the main holding.

Maintain the structure of a headnote as follows:
1. Topic and subtopic, such as "Execution — Sale in execution — Notice …"
2. Brief summary of the relevant facts
3. Legal issue
4. Holding/Conclusion

Please do not include any additional commentary or full citations; simply produce the essential legal points in the style of a reported case headnote.

Case text:
%s

Please provide only the summary, without any additional commentary or formatting.
Here is an example:
Execution — Sale in execution — Notice of sale in execution — Rule 46(7)(c) of Uniform Rules requiring publication of notice in Gazette two weeks before date of appointed sale — Advertisement not placed timeously — Sheriff placing advertisement in Gazette one day short of two weeks before date of appointed sale — No evidence of prejudice to any affected parties — Failure to observe time requirements for publication in Gazette condonable and not constituting defect fatal to validity of sale`

const scoreSystemPrompt = `You are a highly critical legal expert analyzing court judgments. Be extremely strict in your scoring - only truly significant judgments should score above 75. Always start your response with 'Reportability Score: XX' where XX is a number between 0 and 100.`

const scorePrompt = `Analyze the provided judgment and assign a 'reportability score' between 0 and 100. Be extremely strict in your scoring - only truly significant judgments should score above 75.

Your response MUST start with 'Reportability Score: XX' where XX is the numerical score.

Score the judgment based on these criteria, and be STRICT in your assessment:

1. **Legal Significance (Weight: 35)**:
   - High (30-35): Establishes new legal principle or significantly modifies existing law
   - Medium (20-29): Clarifies existing legal principles
   - Low (0-19): Merely applies established principles

2. **Precedential Value (Weight: 25)**:
   - High (20-25): From higher courts (Constitutional Court, SCA) AND likely to be widely cited
   - Medium (10-19): From high courts AND addresses important legal issues
   - Low (0-9): Limited precedential value or routine application of law

3. **Practical Impact (Weight: 20)**:
   - High (15-20): Major implications for legal practice or society at large
   - Medium (8-14): Moderate impact on specific legal areas
   - Low (0-7): Minimal practical impact beyond the parties involved

4. **Quality of Reasoning (Weight: 15)**:
   - High (12-15): Exceptional analysis, comprehensive research, novel legal insights
   - Medium (6-11): Sound reasoning but not exceptional
   - Low (0-5): Basic or flawed reasoning

5. **Public Interest (Weight: 5)**:
   - High (4-5): Significant public importance or media attention
   - Medium (2-3): Moderate public interest
   - Low (0-1): Limited public interest

IMPORTANT: Make sure your category scores add up to your total reportability score.

For each category, clearly state the score in this format: 'Score: XX/YY' where XX is the score given and YY is the maximum possible score for that category.

Example format:
Reportability Score: 85

1. Legal Significance (Weight: 35%%)
Score: 30/35
[Explanation...]

[Continue with other categories...]

Here is the judgment text:
%s`

const longSummaryPrompt = `Summarize the provided judgment in the following structured legal format, presented in paragraphs without numbered or bulleted lists. Use precise terminology and replicate the sections, headings, and order below:

**Case Note**:
Explain why the case is reportable (e.g., novel principles, application of existing law). Mention key legal principles or doctrines that were applied.

**Cases Cited**:
Identify all cases mentioned in the judgment. For each case, use the correct citation style (e.g., Case Name [Year] Court Abbreviation Volume/Report Page). Present them in paragraphs.

**Legislation Cited**:
List or describe any statutes or regulations referenced. For instance: Road Accident Fund Act Section 17(1)(b).

**Rules of Court Cited**:
List or describe any rules of court referenced. For instance: Rule 1.1(a) of the Rules of Court.

**HEADNOTE**:
**Summary**:
Include one or two paragraphs on the core claim and the outcome.
**Key Issues**:
Briefly phrase the main legal issues in question form, if relevant.
**Held**:
State, in concise terms, the ultimate holding or decision.

**THE FACTS**:
Give a comprehensive account of the facts in no less than three paragraphs, including the parties, essential events, claims, and any relevant procedural history.

**THE ISSUES**:
List the legal questions the court had to determine in paragraph form. For example, (1) Whether…, (2) Whether…

**ANALYSIS**:
Detail the court's reasoning for each issue comprehensively in no less than three paragraphs. Explain how the court applied legal principles to the facts in paragraph form.

**REMEDY**:
Explain the relief granted or the final order of the court (e.g., application dismissed with costs).

**LEGAL PRINCIPLES**:
Describe the key legal principles or rules that guided the court's decision comprehensively in no less than three paragraphs. Include any direct quotes from cases or statutes where necessary, but present them within paragraphs without bullet points.

Full text:
%s`

const metadataSystemPrompt = `You extract metadata from South African court judgments. Answer with exactly four lines in this format and nothing else:
Citation: <neutral citation, e.g. [2024] ZASCA 42>
Case Number: <case number, e.g. 123/2023>
Date: <judgment date, e.g. 15 March 2024>
Judges: <comma-separated surnames with judicial titles, e.g. Ponnan JA, Mbha JA>
Use "Unknown" for any field the text does not contain.`
