package ai

// ReceiptPrompt is the instruction sent alongside every receipt image.
// It pins the exact marker phrases that Extract scans for; the two
// sides must stay in sync.
const ReceiptPrompt = "Analyze the uploaded receipt and extract items purchased along with their quantities. " +
	"Perform an in-depth analysis of the carbon footprint by considering product categories, materials, " +
	"transportation, and manufacturing impact. " +
	"Provide a refined estimate in kilograms of CO2 for the entire purchase, ensuring the use of " +
	"industry-standard emission values where available. " +
	"Calculate the estimated cost in USD to offset this carbon footprint using up-to-date carbon credit prices. " +
	"Ensure that the response contains: 'Total Carbon Emissions: X kg CO2' and 'Offset Cost: $X' " +
	"as exact phrases for extraction. " +
	"If the image is not a receipt or is invalid, respond with an error message: " +
	"'Error: The uploaded image is not a valid receipt.'"
