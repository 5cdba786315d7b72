// Package fixtures holds the demo fact-check results served when no analysis
// backend is configured. Distribution counts equal the returned sources per tier;
// FoundCount keeps the number of sources of that tier that were found.
package fixtures

import (
	"time"

	"genuverity-backend/models"
)

const (
	VaccinesID  = "vaccines-autism-2024"
	CoffeeID    = "coffee-health-2024"
	GreatWallID = "great-wall-space-2024"
)

// All returns fresh copies of every fixture
func All() []*models.FactCheckResult {
	return []*models.FactCheckResult{Vaccines(), Coffee(), GreatWall()}
}

// Default is the result the demo front-end shows for unknown ids
func Default() *models.FactCheckResult {
	return Vaccines()
}

// ByID returns a fresh copy of the fixture with the given id
func ByID(id string) (*models.FactCheckResult, bool) {
	for _, r := range All() {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Vaccines is the comprehensive vaccines/autism result
func Vaccines() *models.FactCheckResult {
	return &models.FactCheckResult{
		ID:           VaccinesID,
		Claim:        "Vaccines cause autism",
		Verdict:      models.VerdictFalse,
		Confidence:   98,
		AnalysisTime: "38s",
		Summary:      "No credible scientific evidence supports a link between vaccines and autism. Multiple large-scale studies involving hundreds of thousands of children have found no correlation. The original 1998 study was retracted due to fraud.",
		BottomLine:   "Vaccines do not cause autism",
		QualityMetrics: models.QualityMetrics{
			SourceAgreement: 95,
			EvidenceQuality: 92,
			SourceCoverage:  98,
			Reliability:     96,
		},
		SourceDistribution: []models.SourceDistribution{
			{Tier: 1, TierName: "GenuVerified", Count: 3, FoundCount: intPtr(3), WeightContribution: 35, Icon: "🔬"},
			{Tier: 2, TierName: "Fact-Check Orgs", Count: 2, FoundCount: intPtr(9), WeightContribution: 30, Icon: "✓"},
			{Tier: 3, TierName: "Academic", Count: 0, FoundCount: intPtr(42), WeightContribution: 25, Icon: "🎓"},
			{Tier: 4, TierName: "Government", Count: 0, FoundCount: intPtr(12), WeightContribution: 7, Icon: "🏛️"},
			{Tier: 5, TierName: "Media", Count: 0, FoundCount: intPtr(15), WeightContribution: 2.5, Icon: "📰"},
			{Tier: 6, TierName: "Social Media", Count: 1, FoundCount: intPtr(5), WeightContribution: 0.5, Icon: "📱"},
		},
		Sources: []models.Source{
			{
				ID:               "1",
				Title:            "MMR Vaccine Safety: Large-Scale Study",
				URL:              "https://thelancet.com/example",
				Domain:           "The Lancet",
				CredibilityScore: 99,
				PublishDate:      "2019",
				Excerpt:          "Study of 657,000 children found no correlation between MMR vaccine and autism diagnosis",
				KeyFinding:       "657,000 children studied, no correlation found between MMR vaccine and autism diagnosis",
				Tier:             1,
				Type:             models.SourceTypePrimary,
			},
			{
				ID:               "2",
				Title:            "Comprehensive Meta-Analysis of Vaccine Safety",
				URL:              "https://pubmed.ncbi.nlm.nih.gov/example",
				Domain:           "PubMed",
				CredibilityScore: 97,
				PublishDate:      "2014",
				Excerpt:          "Meta-analysis of 1.2 million children confirms no link between vaccines and autism",
				Tier:             1,
				Type:             models.SourceTypePrimary,
			},
			{
				ID:               "3",
				Title:            "Denmark Population Study",
				URL:              "https://nejm.org/example",
				Domain:           "New England Journal of Medicine",
				CredibilityScore: 98,
				PublishDate:      "2002",
				Excerpt:          "Population study of 537,000 children in Denmark found no association",
				Tier:             1,
				Type:             models.SourceTypePrimary,
			},
			{
				ID:               "4",
				Title:            "Vaccine-Autism Claim Debunked",
				URL:              "https://factcheck.org/example",
				Domain:           "FactCheck.org",
				CredibilityScore: 97,
				PublishDate:      "2024",
				Excerpt:          "Multiple studies have found no link between vaccines and autism. The original study claiming a link was retracted.",
				Tier:             2,
				Type:             models.SourceTypeFactCheck,
			},
			{
				ID:               "5",
				Title:            "Snopes: MMR Vaccine Does Not Cause Autism",
				URL:              "https://snopes.com/example",
				Domain:           "Snopes",
				CredibilityScore: 95,
				PublishDate:      "2023",
				Excerpt:          "Decades of research have definitively shown no causal relationship",
				Tier:             2,
				Type:             models.SourceTypeFactCheck,
			},
			{
				ID:               "6",
				Title:            "Dr. Mike Explains Vaccines",
				URL:              "https://youtube.com/watch?v=example",
				Domain:           "YouTube",
				CredibilityScore: 95,
				PublishDate:      "2023",
				Excerpt:          "Medical doctor explains the science behind vaccine safety",
				Tier:             6,
				Type:             models.SourceTypeSocial,
				Social: &models.SocialProfile{
					Platform:    models.PlatformYouTube,
					CreatorName: "Dr. Mike",
					ViewCount:   int64Ptr(2300000),
					Thumbnail:   "https://images.unsplash.com/photo-1576091160399-112ba8d25d1d?w=400",
					IsVerified:  boolPtr(true),
				},
			},
		},
		TotalSourceCount:    327,
		AnalyzedSourceCount: 84,
		AIModels: []models.AIModelAnalysis{
			{
				ModelName:  "Gemini 2.5 Pro",
				Verdict:    models.VerdictFalse,
				Confidence: 97,
				Reasoning:  "No scientific evidence supports this claim. Extensive research across multiple countries and populations has consistently found no causal link.",
			},
			{
				ModelName:  "GPT-5",
				Verdict:    models.VerdictFalse,
				Confidence: 98,
				Reasoning:  "Multiple large-scale studies demonstrate vaccine safety. The original fraudulent study has been thoroughly discredited.",
			},
			{
				ModelName:  "Claude Sonnet 4.5",
				Verdict:    models.VerdictFalse,
				Confidence: 99,
				Reasoning:  "Comprehensive research including meta-analyses and population studies refutes any link between vaccines and autism.",
			},
		},
		Timeline: []models.TimelineEvent{
			{Year: 1998, Description: "Wakefield study published (Later retracted for fraud)"},
			{Year: 2002, Description: "Denmark study (537k children) - No correlation found"},
			{Year: 2014, Description: "Meta-analysis (1.2M children) - Confirms no link"},
			{Year: 2019, Description: "Largest study (657k children) - Further evidence of safety"},
			{Year: 2024, Description: "Scientific consensus maintained - No credible evidence for link"},
		},
		ConstitutionalAI: &models.ConstitutionalAIScore{
			Overall:       98,
			Truthfulness:  98,
			Helpfulness:   85,
			Harmlessness:  30,
			Neutrality:    80,
			Verifiability: 90,
		},
		Limitations: []string{
			"Analyzed 84 of 327 sources (smart filtering)",
			"Medical claims require consultation with healthcare professionals",
			"Science evolves - results current as of October 2025",
		},
		FullAnalysis: "The claim that vaccines cause autism has been thoroughly investigated and debunked by the scientific community. The original 1998 study by Andrew Wakefield, which suggested a link between the MMR vaccine and autism, was found to be fraudulent and was retracted. Since then, numerous large-scale studies involving hundreds of thousands of children across multiple countries have found no evidence of a causal relationship between vaccines and autism spectrum disorders.\n\n" +
			"Key studies include a 2019 Danish study of 657,000 children, a 2014 meta-analysis covering 1.2 million children, and a 2002 population study in Denmark of 537,000 children. All of these studies consistently found no increased risk of autism in vaccinated children compared to unvaccinated children.\n\n" +
			"Major health organizations worldwide, including the CDC, WHO, and leading pediatric associations, maintain that vaccines are safe and do not cause autism. The scientific consensus is clear and overwhelming.",
		RelatedClaims: []string{
			"MMR vaccine is dangerous",
			"Vaccine ingredients are toxic",
			"Natural immunity is better than vaccines",
		},
		AnalysisMode: models.AnalysisModeFixture,
		CreatedAt:    mustTime("2024-10-04T12:00:00Z"),
	}
}

// Coffee is the smaller result with most optional sections omitted
func Coffee() *models.FactCheckResult {
	return &models.FactCheckResult{
		ID:           CoffeeID,
		Claim:        "Coffee is bad for your health",
		Verdict:      models.VerdictMixed,
		Confidence:   72,
		AnalysisTime: "45s",
		Summary:      "The health effects of coffee are complex and depend on individual factors. Moderate consumption (3-4 cups/day) is generally associated with health benefits, but excessive intake or certain health conditions may warrant caution.",
		BottomLine:   "Moderate coffee consumption is generally beneficial for most people",
		QualityMetrics: models.QualityMetrics{
			SourceAgreement: 68,
			EvidenceQuality: 75,
			SourceCoverage:  80,
			Reliability:     70,
		},
		SourceDistribution: []models.SourceDistribution{
			{Tier: 3, TierName: "Academic", Count: 1, FoundCount: intPtr(18), WeightContribution: 45, Icon: "🎓"},
			{Tier: 4, TierName: "Government", Count: 0, FoundCount: intPtr(5), WeightContribution: 30, Icon: "🏛️"},
			{Tier: 5, TierName: "Media", Count: 0, FoundCount: intPtr(12), WeightContribution: 25, Icon: "📰"},
		},
		Sources: []models.Source{
			{
				ID:               "1",
				Title:            "Coffee Consumption and Health Outcomes",
				URL:              "https://pubmed.example.com",
				Domain:           "PubMed",
				CredibilityScore: 89,
				PublishDate:      "2022",
				Excerpt:          "Systematic review shows moderate coffee intake associated with reduced mortality risk",
				Tier:             3,
				Type:             models.SourceTypeAcademic,
			},
		},
		TotalSourceCount:    35,
		AnalyzedSourceCount: 35,
		AIModels: []models.AIModelAnalysis{
			{
				ModelName:  "Gemini 2.5 Pro",
				Verdict:    models.VerdictMixed,
				Confidence: 70,
				Reasoning:  "Evidence shows both benefits and potential risks depending on consumption levels and individual health status.",
			},
			{
				ModelName:  "GPT-5",
				Verdict:    models.VerdictMixed,
				Confidence: 75,
				Reasoning:  "Health effects vary by individual. Moderate consumption generally beneficial, but not universal.",
			},
		},
		AnalysisMode: models.AnalysisModeFixture,
		CreatedAt:    mustTime("2024-10-04T13:00:00Z"),
	}
}

// GreatWall is the Great Wall visibility result
func GreatWall() *models.FactCheckResult {
	return &models.FactCheckResult{
		ID:           GreatWallID,
		Claim:        "The Great Wall of China is visible from space",
		Verdict:      models.VerdictFalse,
		Confidence:   92,
		AnalysisTime: "3.4s",
		Summary:      "The claim that the Great Wall of China is visible from space with the naked eye is a persistent myth that has been definitively debunked by astronauts and space agencies. While the wall is an impressive structure at 21,196 km long, it is only 4-5 meters wide on average, making it impossible to see from the International Space Station (400km altitude) without optical aid.",
		BottomLine:   "The Great Wall is not visible from space with the naked eye",
		QualityMetrics: models.QualityMetrics{
			SourceAgreement: 95,
			EvidenceQuality: 94,
			SourceCoverage:  92,
			Reliability:     96,
		},
		SourceDistribution: []models.SourceDistribution{
			{Tier: 1, TierName: "GenuVerified", Count: 2, FoundCount: intPtr(2), WeightContribution: 30, Icon: "🔬"},
			{Tier: 2, TierName: "Fact-Check Orgs", Count: 1, FoundCount: intPtr(4), WeightContribution: 28, Icon: "✓"},
			{Tier: 3, TierName: "Academic", Count: 1, FoundCount: intPtr(8), WeightContribution: 25, Icon: "🎓"},
			{Tier: 4, TierName: "Government", Count: 2, FoundCount: intPtr(3), WeightContribution: 15, Icon: "🏛️"},
			{Tier: 6, TierName: "Social Media", Count: 0, FoundCount: intPtr(2), WeightContribution: 2, Icon: "📱"},
		},
		Sources: []models.Source{
			{
				ID:               "1",
				Title:            "NASA - Great Wall of China Not Visible from Space",
				URL:              "https://www.nasa.gov/vision/space/workinginspace/great_wall.html",
				Domain:           "nasa.gov",
				CredibilityScore: 99,
				PublishDate:      "2024-03-15",
				Excerpt:          "The Great Wall of China frequently is cited as the only human-made object visible from space. It's not. The wall is narrow and irregular, and follows the natural contours and colors of the landscape.",
				KeyFinding:       "The Great Wall can barely be seen from the Shuttle, so it would not be possible to see it from the Moon",
				Tier:             4,
				Type:             models.SourceTypeGovernment,
			},
			{
				ID:               "2",
				Title:            "Is China's Great Wall Visible from Space?",
				URL:              "https://www.scientificamerican.com/article/is-chinas-great-wall-visible-from-space/",
				Domain:           "scientificamerican.com",
				CredibilityScore: 96,
				PublishDate:      "2023-11-20",
				Excerpt:          "Based on the wall's width and the resolving power of the human eye, it is impossible to see from space",
				KeyFinding:       "Scientific analysis shows the wall's 4-5m width is below the resolving power threshold from ISS altitude",
				Tier:             3,
				Type:             models.SourceTypeAcademic,
			},
			{
				ID:               "3",
				Title:            "FACT CHECK: Is the Great Wall of China Visible from Space?",
				URL:              "https://www.snopes.com/fact-check/great-wall-of-china-moon/",
				Domain:           "snopes.com",
				CredibilityScore: 94,
				PublishDate:      "2024-01-10",
				Excerpt:          "FALSE: The Great Wall of China is not visible from space with the naked eye",
				KeyFinding:       "Comprehensive fact-check confirms astronaut testimonies that the wall cannot be seen without magnification",
				Tier:             2,
				Type:             models.SourceTypeFactCheck,
			},
			{
				ID:               "4",
				Title:            "Common Space Myths and Misconceptions",
				URL:              "https://www.nature.com/articles/space-myths",
				Domain:           "nature.com",
				CredibilityScore: 98,
				PublishDate:      "2023-08-05",
				Excerpt:          "Academic analysis of persistent space-related myths, including Great Wall visibility",
				Tier:             1,
				Type:             models.SourceTypePrimary,
			},
			{
				ID:               "5",
				Title:            "Limits of Human Vision from Orbital Distances",
				URL:              "https://journals.optical.org/vision-limits",
				Domain:           "journals.optical.org",
				CredibilityScore: 97,
				PublishDate:      "2023-05-12",
				Excerpt:          "Optical physics analysis of human vision limitations from low Earth orbit altitudes",
				Tier:             1,
				Type:             models.SourceTypePrimary,
			},
			{
				ID:               "6",
				Title:            "ESA - What Can Be Seen from Space",
				URL:              "https://www.esa.int/space-observations/earth-structures",
				Domain:           "esa.int",
				CredibilityScore: 98,
				PublishDate:      "2023-09-22",
				Excerpt:          "European Space Agency documentation on visible Earth structures from orbit",
				KeyFinding:       "City lights and major highways are more visible than the Great Wall due to contrast and width",
				Tier:             4,
				Type:             models.SourceTypeGovernment,
			},
		},
		TotalSourceCount:    47,
		AnalyzedSourceCount: 42,
		AIModels: []models.AIModelAnalysis{
			{
				ModelName:  "Gemini 2.0 Pro",
				Verdict:    models.VerdictFalse,
				Confidence: 93,
				Reasoning:  "Multiple astronauts including Chris Hadfield have confirmed they cannot see the wall from the ISS. The wall's width (4-5m) and color similarity to surrounding terrain make it indistinguishable from space.",
			},
			{
				ModelName:  "GPT-5",
				Verdict:    models.VerdictFalse,
				Confidence: 91,
				Reasoning:  "NASA officially debunked this myth. The wall's dimensions and contrast with surroundings fall below the resolution threshold of human vision from orbital altitudes.",
			},
			{
				ModelName:  "Claude Sonnet 4.5",
				Verdict:    models.VerdictFalse,
				Confidence: 92,
				Reasoning:  "Scientific consensus based on optical physics, satellite imagery analysis, and direct astronaut observations confirms the Great Wall is not visible from space without magnification.",
			},
		},
		Timeline: []models.TimelineEvent{
			{Year: 1932, Description: "Myth originates in Ripley's Believe It or Not publication"},
			{Year: 1961, Description: "Yuri Gagarin's flight - no report of seeing the wall"},
			{Year: 2003, Description: "Yang Liwei (Chinese astronaut) confirms wall is invisible from orbit"},
			{Year: 2004, Description: "NASA releases official statement debunking the myth"},
			{Year: 2024, Description: "Latest ISS crew reconfirms wall cannot be seen without optical aid"},
		},
		ConstitutionalAI: &models.ConstitutionalAIScore{
			Overall:       95,
			Truthfulness:  96,
			Helpfulness:   95,
			Harmlessness:  94,
			Neutrality:    90,
			Verifiability: 95,
		},
		Limitations: []string{
			"Limited to visible light spectrum observations",
			"Does not account for potential future observation technologies",
			"Focused on current ISS altitude (400km)",
			"Analysis considers naked eye visibility only, not telescopic observations",
		},
		FullAnalysis: "The claim that the Great Wall of China is visible from space has been thoroughly investigated by space agencies, astronauts, and scientists. The physical dimensions of the Great Wall (average width 4-5 meters) combined with the resolution limits of human vision make it impossible to distinguish from the International Space Station's altitude (approximately 400km).\n\n" +
			"Key findings from the analysis:\n\n" +
			"• NASA officially debunked this myth, stating the Great Wall is not visible from low Earth orbit without magnification\n" +
			"• Multiple astronauts including Chris Hadfield, Yang Liwei (China), and others have confirmed they cannot see the wall from the ISS\n" +
			"• The wall's width (4-5m) and color similarity to surrounding terrain make it indistinguishable from space\n" +
			"• City lights and major highways are actually more visible from space than the Great Wall due to better contrast and width\n\n" +
			"The myth originated in the 1930s, before space travel was possible, in a Ripley's Believe It or Not publication. Despite clear evidence to the contrary from astronauts who have actually been to space, the myth has persisted in popular culture, textbooks, and tourist materials.\n\n" +
			"Scientific analysis shows that the angular resolution of the human eye (approximately 1 arcminute) combined with atmospheric interference makes it impossible to resolve structures as narrow as the Great Wall from orbital altitudes. While the wall is an impressive engineering feat spanning over 21,000 kilometers, its visibility from space is a myth that has been definitively debunked by those who have actually observed Earth from orbit.",
		RelatedClaims: []string{
			"The Great Wall is the only man-made structure visible from the Moon",
			"The Great Wall is thousands of years old",
			"The Great Wall was built to keep out Mongolian invasions",
		},
		AnalysisMode: models.AnalysisModeFixture,
		CreatedAt:    mustTime("2024-10-04T14:30:00Z"),
	}
}
