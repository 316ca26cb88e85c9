package detect

// Heuristic scoring weights. These are tuning knobs, kept together and named
// so each field extractor can be adjusted and tested independently.
const (
	// structuredConfidence is the fixed confidence of a structured-data hit.
	structuredConfidence = 0.95

	// viewportHeight is the nominal viewport used for fold calculations.
	viewportHeight = 900.0
	// areaFoldFactor excludes candidate containers starting more than this
	// many viewport heights from the top of the page.
	areaFoldFactor = 1.5
	// areaMinSide is the minimum width and height of a candidate container.
	areaMinSide = 200.0
	// areaMinImageSide qualifies an image as evidence of a product container.
	areaMinImageSide = 100.0
	// areaOffsetDamping softens the top-of-page advantage in the area score.
	areaOffsetDamping = 100.0
	// areaCartBonus dominates the area score when a container holds an
	// add-to-cart affordance.
	areaCartBonus = 50000.0

	// nameMinLen/nameMaxLen bound a plausible product title.
	nameMinLen = 3
	nameMaxLen = 150
	// nameShortLen is the heading length under which a subtitle is sought.
	nameShortLen = 25
	// nameBadgeCapsLen is the length under which an all-caps string reads as
	// a badge rather than a title.
	nameBadgeCapsLen = 20
	// nameTestIDBonus favors test-id carrying elements in the scored search.
	nameTestIDBonus = 50.0
	// nameTypographyBonus rewards typography-marker test ids at readable sizes.
	nameTypographyBonus = 30.0
	// nameTypographyMinFont gates the typography bonus.
	nameTypographyMinFont = 16.0
	// nameClassBonus favors product-title class elements.
	nameClassBonus = 30.0
	// subtitleMinLen/subtitleMaxLen bound a plausible subtitle.
	subtitleMinLen = 5
	subtitleMaxLen = 100

	// priceMaxTextLen rejects prose-length candidates.
	priceMaxTextLen = 50
	// priceFontDivisor and priceFontWeight convert font size into score.
	priceFontDivisor = 10.0
	priceFontWeight  = 30.0
	// priceTopThreshold splits the vertical-position bonus.
	priceTopThreshold = 500.0
	priceTopBonus     = 30.0
	priceTopPenalty   = 10.0
	// priceClassBonus rewards an explicit "price" class.
	priceClassBonus = 20.0
	// priceStrongAttrBonus rewards price test ids and data attributes.
	priceStrongAttrBonus = 25.0
	// priceConfidenceScale maps a winning score into [0,1].
	priceConfidenceScale = 100.0

	// imageMinSide is the minimum rendered size of a product image.
	imageMinSide = 150.0
	// imageMax caps how many images a result carries.
	imageMax = 3

	// saleReasonStep is the per-reason confidence increment, capped at 1.
	saleReasonStep = 0.25
	// Sale-red text: strongly red-dominant channels.
	saleRedMin       = 180
	saleRedDominance = 2.0
	// Sale-green background: strongly green-dominant channels.
	saleGreenMin       = 200
	saleGreenDominance = 1.5
)
