package generate

// NHS standard code systems used by the synthetic datasets. Entries are
// ordered slices rather than maps so weighted selection stays deterministic
// under a fixed seed.

type diagnosisCode struct {
	Code       string
	Name       string
	Prevalence float64
}

// icd10Codes holds common ICD-10 diagnosis codes with realistic prevalence.
var icd10Codes = []diagnosisCode{
	{"I10", "Essential hypertension", 0.15},
	{"E11", "Type 2 diabetes mellitus", 0.08},
	{"I25", "Chronic ischaemic heart disease", 0.06},
	{"J44", "Chronic obstructive pulmonary disease", 0.04},
	{"N18", "Chronic kidney disease", 0.03},
	{"F32", "Depressive episode", 0.12},
	{"F41", "Anxiety disorders", 0.09},
	{"M79", "Soft tissue disorders", 0.07},
	{"R06", "Abnormalities of breathing", 0.05},
	{"Z51", "Encounter for other aftercare", 0.04},
	{"S72", "Fracture of femur", 0.002},
	{"I21", "Acute myocardial infarction", 0.001},
	{"J18", "Pneumonia", 0.02},
	{"K80", "Cholelithiasis", 0.015},
}

type procedureCode struct {
	Code      string
	Name      string
	Frequency float64
}

// opcs4Codes holds common OPCS-4 procedure codes.
var opcs4Codes = []procedureCode{
	{"Z92", "Monitoring", 0.25},
	{"U07", "Computer tomography", 0.12},
	{"W37", "Cataract extraction", 0.08},
	{"H01", "Cardiac catheterisation", 0.05},
	{"T87", "Arthroscopy", 0.04},
	{"M65", "Endoscopy of colon", 0.06},
	{"J27", "Cholecystectomy", 0.03},
	{"W19", "Excision of lesion of skin", 0.07},
}

type hrgCode struct {
	Code   string
	Name   string
	Tariff float64
}

// hrgCodes holds Healthcare Resource Groups for payment grouping.
var hrgCodes = []hrgCode{
	{"AA22", "Non-elective long stay", 4500.00},
	{"AA23", "Non-elective short stay", 1800.00},
	{"DZ19", "Cardiac procedures", 8900.00},
	{"FF01", "Cataract procedures", 950.00},
	{"HN12", "Arthroscopic procedures", 2100.00},
	{"FZ92", "Outpatient procedures", 180.00},
	{"WJ11", "Emergency medicine", 280.00},
}

type bnfCode struct {
	Code    string
	Name    string
	AvgCost float64
}

// bnfCodes holds British National Formulary prescription codes.
var bnfCodes = []bnfCode{
	{"0101010", "Antacids", 3.50},
	{"0201010", "Cardiac glycosides", 12.80},
	{"0206020", "ACE inhibitors", 8.90},
	{"0301011", "Beta2 agonists", 15.60},
	{"0401020", "Anxiolytics", 6.70},
	{"0601060", "Insulin", 45.20},
	{"0501130", "Penicillins", 7.30},
	{"1001010", "Non-opioid analgesics", 2.10},
	{"0403040", "Antidepressants", 18.40},
}

// admissionMethods maps SUS admission method codes to their descriptions.
// The first two are elective, the rest emergency.
var admissionMethods = []struct {
	Code string
	Name string
}{
	{"11", "Waiting list"},
	{"12", "Booked"},
	{"21", "A&E"},
	{"22", "GP referral"},
	{"23", "Bed bureau"},
	{"24", "Consultant clinic"},
	{"28", "Other emergency"},
}

func isElectiveAdmission(code string) bool {
	return code == "11" || code == "12"
}

// specialtyFor maps a primary diagnosis to a treatment specialty code.
func specialtyFor(diagnosis string) string {
	switch diagnosis {
	case "I21", "I25":
		return "320" // Cardiology
	case "J18", "J44":
		return "340" // Respiratory
	case "S72":
		return "110" // Trauma & Orthopaedics
	case "F32":
		return "710" // Psychiatry
	case "K80":
		return "100" // General Surgery
	case "W37":
		return "130" // Ophthalmology
	default:
		return "300" // General Medicine
	}
}

// proceduresFor maps a primary diagnosis to its usual procedures.
func proceduresFor(diagnosis string) []string {
	switch diagnosis {
	case "I21":
		return []string{"H01", "H02"}
	case "S72":
		return []string{"T87"}
	case "K80":
		return []string{"J27"}
	case "W37":
		return []string{"W37"}
	case "J18":
		return []string{"Z92"}
	default:
		return nil
	}
}
