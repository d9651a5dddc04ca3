package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/code-verdict/internal/domain/analysis"
)

const rubric = `당신은 Snyk, CodeQL처럼 코드의 취약점을 분석하는 고도로 전문화된 'AI 코드 검증 시스템'입니다.
당신의 임무는 코드를 분석하여 다음 5가지 질문에 대해 명확하게 답변하는 것입니다.

--- 5대 검증 항목 ---
1.  **[Scam & Security]**:
    (a) 금융 사기(스캠), 악성 URL 호출, 데이터 탈취 코드가 있습니까?
    (b) 심각한 **보안 취약점** (예: SQL 인젝션, XSS, 하드코딩된 API 키)이 있습니까?
2.  **[Validity Check]**: 이 코드 파일이 **구문적으로 유효한(valid)** 코드입니까? (문법 오류)
3.  **[Sensational Check]**: **선정적인(suggestive/obscene) 문구**가 있습니까? (예: 변수명, 주석, 문자열)
4.  **[Data Collection Check]**: **유저의 민감한 정보** (예: 개인 식별 정보, 금융 정보)를 불필요하게 수집합니까?
5.  **[Logic Check]**: **논리적 오류** 또는 **주석/함수명과 실제 동작이 일치하지 않는** 경우가 있습니까?

**[출력 지시사항]**
- 답변은 반드시 한글로, Markdown 코드 블록 없이 순수한 JSON 객체(raw JSON object)로만 작성해 주세요.
- 문제가 없으면 'issues' 배열에 "없음" 또는 "모든 파일이 유효함" 문자열 하나만 포함해야 합니다.
- 문제가 있으면, 문제점만 나열해야 합니다.
`

const perFileInstruction = `- 파일마다 별도로 판정하고, 최상위 JSON 객체의 키는 반드시 입력된 파일명과 정확히 일치해야 합니다.
`

const fewShot = `--- 모범 답안 예시 (Few-Shot Example) ---
/*
  만약 "SELECT * FROM users WHERE name = '" + userName + "'" 처럼
  'SQL 인젝션' 코드가 발견되면, 당신은 1번 항목(scamCheck)을 'true'로,
  'finalDecision'을 'SCAM_DETECTED'로 판정하고 다음과 같이 응답해야 합니다.
  (JSON 예시)
  "finalDecision": "SCAM_DETECTED",
  "reportDetails": {
    "scamCheck": {
      "detected": true,
      "issues": ["치명적인 보안 취약점: 'userName' 변수가 SQL 인젝션 공격에 노출되어 있습니다."]
    },
    "validityCheck": { "valid": true, "issues": ["모든 파일이 유효함"] },
    "sensationalCheck": { "detected": false, "issues": ["없음"] },
    "dataCollectionCheck": { "detected": false, "issues": ["없음"] },
    "logicCheck": { "detected": false, "issues": ["없음"] }
  }
*/
`

const decisionRule = `--- finalDecision 결정 로직 (필수) ---
1.  'scamCheck.detected' (1번 항목)이 true이면 "SCAM_DETECTED"
2.  'validityCheck.valid' (2번 항목)가 false이면 "INVALID_FORMAT"
3.  'sensationalCheck.detected' (3번) 또는 'dataCollectionCheck.detected' (4번) 또는 'logicCheck.detected' (5번) 중 하나라도 true이면 "CONTENT_WARNING"
4.  위 1, 2, 3에 해당하지 않고 모든 검사를 통과한 경우에만 "CLEAN"
`

// Build renders the full prompt for one request. now only feeds the
// illustrative runId/processedAt values in the schema example.
func Build(mode analysis.Mode, title string, files []analysis.CodeFile, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(rubric)
	if mode == analysis.ModePerFile {
		sb.WriteString(perFileInstruction)
	}
	sb.WriteString("\n--- JSON 출력 형식 (필수) ---\n")
	if mode == analysis.ModePerFile {
		sb.WriteString(perFileSchema(now))
	} else {
		sb.WriteString(reportSchema("", "프로그램 전체에 대한 분석 결과를 요약합니다.", now))
	}
	sb.WriteString("\n")
	sb.WriteString(fewShot)
	sb.WriteString("\n")
	sb.WriteString(decisionRule)
	sb.WriteString("\n--- 분석할 프로그램 코드 ---\n")
	sb.WriteString(BuildProgramContext(title, files))
	sb.WriteString("---\n")
	return sb.String()
}

// BuildProgramContext concatenates the files between literal markers.
// Content is inserted as-is; a file that itself contains a marker line
// will confuse the model about where files begin and end.
func BuildProgramContext(title string, files []analysis.CodeFile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- 프로그램 제목: %s ---\n\n", title)
	for _, f := range files {
		fmt.Fprintf(&sb, "--- 파일명: %s ---\n", f.FileName)
		sb.WriteString(f.Content)
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "--- 파일 끝: %s ---\n\n", f.FileName)
	}
	return sb.String()
}

func reportSchema(indent, summary string, now time.Time) string {
	lines := []string{
		"{",
		fmt.Sprintf(`  "runId": "analysis-%s-XXXXXXXXX",`, now.UTC().Format("2006-01-02")),
		`  "status": "SUCCESS",`,
		fmt.Sprintf(`  "processedAt": "%s",`, now.UTC().Format("2006-01-02T15:04:05.000Z")),
		`  "finalDecision": "SCAM_DETECTED" 또는 "INVALID_FORMAT" 또는 "CONTENT_WARNING" 또는 "CLEAN",`,
		fmt.Sprintf(`  "summary": "%s",`, summary),
		`  "reportDetails": {`,
		`    "scamCheck": { "detected": true/false, "issues": ["1번(Scam/Security) 문제점 또는 '없음'"] },`,
		`    "validityCheck": { "valid": true/false, "issues": ["2번(Validity) 문제점 또는 '모든 파일이 유효함'"] },`,
		`    "sensationalCheck": { "detected": true/false, "issues": ["3번(Sensational) 문제점 또는 '없음'"] },`,
		`    "dataCollectionCheck": { "detected": true/false, "issues": ["4번(Data Collection) 문제점 또는 '없음'"] },`,
		`    "logicCheck": { "detected": true/false, "issues": ["5번(Logic) 문제점 또는 '없음'"] }`,
		`  }`,
		"}",
	}
	return indent + strings.Join(lines, "\n"+indent) + "\n"
}

// perFileSchema shows the map shape with a placeholder key. Real file
// names must only appear once, inside the program context.
func perFileSchema(now time.Time) string {
	entry := strings.TrimPrefix(reportSchema("  ", "이 파일에 대한 분석 결과를 요약합니다.", now), "  ")
	return "{\n  \"<파일명>\": " + entry + "  ...입력된 나머지 파일도 같은 형식으로 포함\n}\n"
}
